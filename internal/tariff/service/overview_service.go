package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/OpenNSW/tariff/internal/lock"
	"github.com/OpenNSW/tariff/internal/tariff/model"
)

// refetchThreshold is the cached row count at or below which the series is fetched again.
// A single row is usually a current-rate fact or a sentinel rather than a series.
const refetchThreshold = 1

// OverviewService assembles historical tariff series.
type OverviewService struct {
	countries  CountryRepository
	tariffs    TariffRepository
	items      *ItemResolver
	historical HistoricalRateProvider
	locker     lock.KeyLocker
}

func NewOverviewService(
	countries CountryRepository,
	tariffs TariffRepository,
	items *ItemResolver,
	historical HistoricalRateProvider,
	locker lock.KeyLocker,
) *OverviewService {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &OverviewService{
		countries:  countries,
		tariffs:    tariffs,
		items:      items,
		historical: historical,
		locker:     locker,
	}
}

// GetOverview returns every stored observation of the triple, oldest first, within the optional period.
func (s *OverviewService) GetOverview(ctx context.Context, query model.TariffOverviewQueryDTO) (*model.TariffOverviewResponseDTO, error) {
	period, err := parsePeriod(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}
	reporting, err := lookupCountry(ctx, s.countries, "reporting", query.ReportingCountry)
	if err != nil {
		return nil, err
	}
	partner, err := lookupCountry(ctx, s.countries, "partner", query.PartnerCountry)
	if err != nil {
		return nil, err
	}
	item, err := s.items.Resolve(ctx, query.Item, *reporting)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("overview:%d:%d:%s", reporting.CountryNumber, partner.CountryNumber, item.ItemCode)
	v, err := s.locker.Do(ctx, key, func(ctx context.Context) (any, error) {
		return s.loadSeries(ctx, *reporting, *partner, *item)
	})
	if err != nil {
		return nil, err
	}
	rows := v.([]model.Tariff)

	points := make([]model.HistoricalTariffPoint, 0, len(rows))
	for _, row := range sortByDate(rows) {
		if !period.contains(row.EffectiveDate) {
			continue
		}
		points = append(points, model.HistoricalTariffPoint{
			StartPeriod: row.EffectiveDate.Format(model.DateLayout),
			TariffRate:  row.PercentageRate,
		})
	}

	slog.InfoContext(ctx, "assembled tariff overview",
		"reporting", reporting.CountryNumber, "partner", partner.CountryNumber, "item", item.ItemCode, "points", len(points))

	return &model.TariffOverviewResponseDTO{
		ReportingCountry: reporting.CountryName,
		PartnerCountry:   partner.CountryName,
		TariffData:       points,
	}, nil
}

func (s *OverviewService) loadSeries(ctx context.Context, reporting, partner model.Country, item model.Item) ([]model.Tariff, error) {
	rows, err := s.tariffs.FindByReportingAndPartnerAndItem(ctx, reporting, partner, item)
	if err != nil {
		return nil, err
	}
	if len(rows) > refetchThreshold {
		return rows, nil
	}
	if s.historical == nil {
		if len(rows) > 0 {
			return rows, nil
		}
		return nil, fmt.Errorf("no historical-rate provider configured: %w", model.ErrNotFound)
	}

	slog.InfoContext(ctx, "historical series incomplete, fetching",
		"reporting", reporting.CountryNumber, "partner", partner.CountryNumber, "item", item.ItemCode, "cached", len(rows))
	fetched, err := s.historical.FetchHistoricalRates(ctx, reporting, partner, item)
	if err != nil {
		return nil, err
	}
	saved, err := s.tariffs.SaveAll(ctx, fetched)
	if err != nil {
		return nil, err
	}
	return append(rows, saved...), nil
}

// sortByDate orders rows by effective date, then id, without touching the input.
func sortByDate(rows []model.Tariff) []model.Tariff {
	sorted := make([]model.Tariff, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].EffectiveDate.Equal(sorted[j].EffectiveDate) {
			return sorted[i].EffectiveDate.Before(sorted[j].EffectiveDate)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// period is an inclusive date range; zero bounds are open.
type period struct {
	start, end time.Time
}

func parsePeriod(start, end string) (period, error) {
	var p period
	var err error
	if start != "" {
		if p.start, err = time.Parse(model.DateLayout, start); err != nil {
			return p, fmt.Errorf("invalid startDate %q, want YYYY-MM-DD: %w", start, model.ErrInvalidArgument)
		}
	}
	if end != "" {
		if p.end, err = time.Parse(model.DateLayout, end); err != nil {
			return p, fmt.Errorf("invalid endDate %q, want YYYY-MM-DD: %w", end, model.ErrInvalidArgument)
		}
	}
	if !p.start.IsZero() && !p.end.IsZero() && p.start.After(p.end) {
		return p, fmt.Errorf("startDate %s is after endDate %s: %w", start, end, model.ErrInvalidArgument)
	}
	return p, nil
}

func (p period) contains(t time.Time) bool {
	d := model.DateOf(t)
	if !p.start.IsZero() && d.Before(p.start) {
		return false
	}
	if !p.end.IsZero() && d.After(p.end) {
		return false
	}
	return true
}
