package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

// CountryLookup resolves provider country references against stored countries.
type CountryLookup interface {
	FindByCode(ctx context.Context, code string) (*model.Country, error)
	FindByName(ctx context.Context, name string) (*model.Country, error)
	FindFirstByNameContaining(ctx context.Context, fragment string) (*model.Country, error)
}

// Sentinels supplies the world and developing grouping countries.
type Sentinels interface {
	World(ctx context.Context) (model.Country, error)
	Developing(ctx context.Context) (model.Country, error)
}

type currentRateEnvelope struct {
	Data []currentRateData `json:"data"`
}

type currentRateData struct {
	TariffRate         *rateBlock `json:"tariff_rate"`
	TableData          []tableRow `json:"tableData"`
	CountryInformation []tableRow `json:"countryInformation"`
}

// rows returns the table rows under whichever key the provider used.
func (d currentRateData) rows() []tableRow {
	if len(d.TableData) > 0 {
		return d.TableData
	}
	return d.CountryInformation
}

type rateBlock struct {
	GeneralRate string `json:"General Rate of Duty"`
	SpecialRate string `json:"Special Rate of Duty"`
	Countries   string `json:"Country"`
}

// customCountries prefers the "Country" field and falls back to the special rate text.
func (b *rateBlock) customCountries() string {
	if strings.TrimSpace(b.Countries) != "" {
		return b.Countries
	}
	return b.SpecialRate
}

type tableRow struct {
	Region    string `json:"FTA Conventional Duty"`
	Rate      string `json:"Rate"`
	Code      string `json:"FTA Code"`
	Countries string `json:"Applicable Country"`
}

// CurrentRateAdapter reads the current duty schedule of a reporting country for one item.
type CurrentRateAdapter struct {
	client    *Client
	countries CountryLookup
	sentinels Sentinels
	now       func() time.Time
}

func NewCurrentRateAdapter(client *Client, countries CountryLookup, sentinels Sentinels) *CurrentRateAdapter {
	return &CurrentRateAdapter{
		client:    client,
		countries: countries,
		sentinels: sentinels,
		now:       time.Now,
	}
}

// FetchCurrentRates calls the provider and parses its rate block and table rows into unsaved facts.
// At most one fact is produced per partner country; the first one wins.
func (a *CurrentRateAdapter) FetchCurrentRates(ctx context.Context, reporting model.Country, item model.Item) ([]model.Tariff, error) {
	query := url.Values{}
	query.Set("product", item.ItemCode)
	query.Set("destination", reporting.PaddedNumber())

	body, err := a.client.get(ctx, "/tariff-data", query)
	if err != nil {
		return nil, err
	}

	var envelope currentRateEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("malformed %s payload: %w: %v", a.client.Name(), model.ErrUpstreamFailure, err)
	}
	if len(envelope.Data) == 0 {
		return nil, fmt.Errorf("%s returned no tariff data for %s/%s: %w",
			a.client.Name(), reporting.PaddedNumber(), item.ItemCode, model.ErrUpstreamFailure)
	}

	return a.parse(ctx, reporting, item, envelope.Data[0])
}

func (a *CurrentRateAdapter) parse(ctx context.Context, reporting model.Country, item model.Item, data currentRateData) ([]model.Tariff, error) {
	today := a.now()
	facts := &factSet{seen: map[int]bool{}}

	if block := data.TariffRate; block != nil {
		special := ParseSpecialRate(block.customCountries())
		if len(special.Codes) == 0 {
			slog.DebugContext(ctx, "no custom countries in rate block", "reporting", reporting.CountryNumber, "item", item.ItemCode, "countries", block.customCountries())
		}
		for _, code := range special.Codes {
			partner, err := a.countries.FindByCode(ctx, code)
			if err != nil {
				if errors.Is(err, model.ErrNotFound) {
					slog.DebugContext(ctx, "unknown custom country code", "code", code)
					continue
				}
				return nil, err
			}
			facts.add(model.NewTariff(reporting, *partner, item, special.Rate, today, model.BasisSpecialRate))
		}

		world, err := a.sentinels.World(ctx)
		if err != nil {
			return nil, err
		}
		facts.add(model.NewTariff(reporting, world, item, ParseGeneralRate(block.GeneralRate), today, model.BasisGeneralRate))
	}

	for _, row := range data.rows() {
		targets, err := a.rowTargets(ctx, row)
		if err != nil {
			return nil, err
		}
		rate := ParseTableRate(row.Rate)
		if !strings.Contains(row.Rate, "%") {
			slog.DebugContext(ctx, "table rate without percent treated as zero", "region", row.Region, "rate", row.Rate)
		}
		basis := row.Region + " " + row.Countries
		for _, partner := range targets {
			facts.add(model.NewTariff(reporting, partner, item, rate, today, basis))
		}
	}

	slog.InfoContext(ctx, "parsed current rates", "reporting", reporting.CountryNumber, "item", item.ItemCode, "facts", len(facts.list))
	return facts.list, nil
}

// rowTargets resolves the region label and the listed country names of one table row.
func (a *CurrentRateAdapter) rowTargets(ctx context.Context, row tableRow) ([]model.Country, error) {
	var targets []model.Country
	add := func(c model.Country) {
		for _, t := range targets {
			if t.CountryNumber == c.CountryNumber {
				return
			}
		}
		targets = append(targets, c)
	}

	switch ClassifyRegion(row.Region) {
	case RegionWorld:
		world, err := a.sentinels.World(ctx)
		if err != nil {
			return nil, err
		}
		add(world)
	case RegionDeveloping:
		developing, err := a.sentinels.Developing(ctx)
		if err != nil {
			return nil, err
		}
		add(developing)
	default:
		region, err := a.countries.FindFirstByNameContaining(ctx, row.Region)
		switch {
		case err == nil:
			add(*region)
		case errors.Is(err, model.ErrNotFound):
			slog.DebugContext(ctx, "region label matches no country", "region", row.Region)
		default:
			return nil, err
		}
	}

	for _, name := range SplitCountryNames(row.Countries) {
		country, err := a.countries.FindByName(ctx, name)
		switch {
		case err == nil:
			add(*country)
		case errors.Is(err, model.ErrNotFound):
			slog.DebugContext(ctx, "unknown applicable country", "name", name)
		default:
			return nil, err
		}
	}
	return targets, nil
}

// factSet keeps the first fact per partner country.
type factSet struct {
	seen map[int]bool
	list []model.Tariff
}

func (s *factSet) add(t model.Tariff) {
	if s.seen[t.PartnerCountryNumber] {
		return
	}
	s.seen[t.PartnerCountryNumber] = true
	s.list = append(s.list, t)
}
