package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

// AllPartnersCode is the provider partner code standing for every partner.
const AllPartnersCode = "000"

// witsEnvelope is the SDMX-JSON shape. dataSets[0].series.<key>.observations maps a period
// index to [rate, ...]; structure.dimensions.observation[0].values lists the periods in index order.
type witsEnvelope struct {
	DataSets  []witsDataSet `json:"dataSets"`
	Structure witsStructure `json:"structure"`
}

type witsDataSet struct {
	Series map[string]witsSeries `json:"series"`
}

type witsSeries struct {
	Observations map[string][]json.RawMessage `json:"observations"`
}

type witsStructure struct {
	Dimensions witsDimensions `json:"dimensions"`
}

type witsDimensions struct {
	Observation []witsObservationDimension `json:"observation"`
}

type witsObservationDimension struct {
	Values []witsPeriod `json:"values"`
}

type witsPeriod struct {
	Start string `json:"start"`
}

// Observation is one dated rate of a historical series.
type Observation struct {
	Date time.Time
	Rate decimal.Decimal
}

// HistoricalRateAdapter reads reported tariff series.
type HistoricalRateAdapter struct {
	client *Client
}

func NewHistoricalRateAdapter(client *Client) *HistoricalRateAdapter {
	return &HistoricalRateAdapter{client: client}
}

// FetchHistoricalRates returns one unsaved fact per observation for the triple.
// When no bilateral series exists it retries once against all partners and
// attributes the rows to the requested partner.
func (a *HistoricalRateAdapter) FetchHistoricalRates(ctx context.Context, reporting, partner model.Country, item model.Item) ([]model.Tariff, error) {
	observations, err := a.fetch(ctx, reporting.PaddedNumber(), partner.PaddedNumber(), item.ItemCode)
	basis := model.BasisHistoricalRate
	if noSeries(err) || (err == nil && len(observations) == 0) {
		slog.InfoContext(ctx, "no bilateral series, retrying for all partners",
			"reporting", reporting.CountryNumber, "partner", partner.CountryNumber, "item", item.ItemCode)
		observations, err = a.fetch(ctx, reporting.PaddedNumber(), AllPartnersCode, item.ItemCode)
		basis = model.BasisHistoricalAllRate
	}
	if err != nil {
		return nil, err
	}
	if len(observations) == 0 {
		return nil, fmt.Errorf("%s returned no observations for %s/%s/%s: %w",
			a.client.Name(), reporting.PaddedNumber(), partner.PaddedNumber(), item.ItemCode, model.ErrUpstreamFailure)
	}

	tariffs := make([]model.Tariff, 0, len(observations))
	for _, obs := range observations {
		tariffs = append(tariffs, model.NewTariff(reporting, partner, item, obs.Rate, obs.Date, basis))
	}
	return tariffs, nil
}

func noSeries(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

func (a *HistoricalRateAdapter) fetch(ctx context.Context, reporter, partner, product string) ([]Observation, error) {
	path := fmt.Sprintf("/datasource/TRN/reporter/%s/partner/%s/product/%s/year/all/datatype/reported",
		url.PathEscape(reporter), url.PathEscape(partner), url.PathEscape(product))
	query := url.Values{}
	query.Set("format", "JSON")

	body, err := a.client.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return ParseObservations(ctx, body)
}

// ParseObservations joins the observation map of every series with the period list, oldest first.
// Entries with a bad index, an out of range index, an unparsable rate or an unparsable start are skipped.
func ParseObservations(ctx context.Context, body []byte) ([]Observation, error) {
	var envelope witsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("malformed historical payload: %w: %v", model.ErrUpstreamFailure, err)
	}
	if len(envelope.DataSets) == 0 {
		return nil, nil
	}

	var periods []witsPeriod
	if dims := envelope.Structure.Dimensions.Observation; len(dims) > 0 {
		periods = dims[0].Values
	}

	seriesKeys := make([]string, 0, len(envelope.DataSets[0].Series))
	for key := range envelope.DataSets[0].Series {
		seriesKeys = append(seriesKeys, key)
	}
	sort.Strings(seriesKeys)

	var observations []Observation
	for _, seriesKey := range seriesKeys {
		for indexKey, values := range envelope.DataSets[0].Series[seriesKey].Observations {
			index, err := strconv.Atoi(indexKey)
			if err != nil || index < 0 || index >= len(periods) {
				slog.WarnContext(ctx, "skipping observation with bad period index", "series", seriesKey, "index", indexKey)
				continue
			}
			if len(values) == 0 {
				continue
			}
			rate, ok := parseObservationValue(values[0])
			if !ok {
				slog.WarnContext(ctx, "skipping observation with unparsable rate", "series", seriesKey, "index", indexKey)
				continue
			}
			date, err := parsePeriodStart(periods[index].Start)
			if err != nil {
				slog.WarnContext(ctx, "skipping observation with unparsable period", "series", seriesKey, "start", periods[index].Start)
				continue
			}
			observations = append(observations, Observation{Date: date, Rate: rate})
		}
	}

	sort.SliceStable(observations, func(i, j int) bool {
		return observations[i].Date.Before(observations[j].Date)
	})
	return observations, nil
}

// parseObservationValue accepts a JSON number or a numeric JSON string.
func parseObservationValue(raw json.RawMessage) (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Zero, false
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return decimal.Zero, false
		}
		s = strings.TrimSpace(str)
	}
	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

// parsePeriodStart takes the date part of an ISO-8601 date-time such as "1989-01-01T00:00:00".
func parsePeriodStart(start string) (time.Time, error) {
	if len(start) < len(model.DateLayout) {
		return time.Time{}, fmt.Errorf("period start too short: %q", start)
	}
	return time.Parse(model.DateLayout, start[:len(model.DateLayout)])
}
