package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OpenNSW/tariff/internal/lock"
	"github.com/OpenNSW/tariff/internal/tariff/model"
)

var hundred = decimal.NewFromInt(100)

// ResolutionEngine answers current-rate queries from the store, fetching on a miss and
// falling back bilateral, then developing, then world, then a persisted "no agreement" sentinel.
type ResolutionEngine struct {
	countries CountryRepository
	tariffs   TariffRepository
	items     *ItemResolver
	current   CurrentRateProvider
	sentinels *SentinelService
	locker    lock.KeyLocker
	now       func() time.Time
}

func NewResolutionEngine(
	countries CountryRepository,
	tariffs TariffRepository,
	items *ItemResolver,
	current CurrentRateProvider,
	sentinels *SentinelService,
	locker lock.KeyLocker,
) *ResolutionEngine {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &ResolutionEngine{
		countries: countries,
		tariffs:   tariffs,
		items:     items,
		current:   current,
		sentinels: sentinels,
		locker:    locker,
		now:       time.Now,
	}
}

// ResolveCurrent resolves the applicable rate and applies it to the item cost.
func (e *ResolutionEngine) ResolveCurrent(ctx context.Context, query model.CurrentTariffQueryDTO) (*model.CurrentTariffResponseDTO, error) {
	if query.ItemCost.IsNegative() {
		return nil, fmt.Errorf("item cost must not be negative: %w", model.ErrInvalidArgument)
	}
	reporting, err := lookupCountry(ctx, e.countries, "reporting", query.ReportingCountry)
	if err != nil {
		return nil, err
	}
	partner, err := lookupCountry(ctx, e.countries, "partner", query.PartnerCountry)
	if err != nil {
		return nil, err
	}
	item, err := e.items.Resolve(ctx, query.Item, *reporting)
	if err != nil {
		return nil, err
	}

	tariff, err := e.selectTariff(ctx, *reporting, *partner, *item)
	if err != nil {
		return nil, err
	}

	amount := tariff.PercentageRate.Mul(query.ItemCost).Div(hundred)
	if tariff.IsNoAgreement() {
		slog.InfoContext(ctx, "no trade agreement found",
			"reporting", reporting.CountryNumber, "partner", partner.CountryNumber, "item", item.ItemCode, "tariffId", tariff.ID)
	}

	return &model.CurrentTariffResponseDTO{
		ReportingCountry:   reporting.CountryName,
		PartnerCountry:     partner.CountryName,
		Item:               item.DisplayName(),
		TariffRate:         tariff.PercentageRate,
		TariffAmount:       amount,
		ItemCostWithTariff: amount.Add(query.ItemCost),
		TariffID:           tariff.ID,
		Description:        tariff.Description,
	}, nil
}

// selectTariff picks the caller's row from the shared (reporting, item) rows, falling back
// to the developing or world aggregate and finally to a persisted sentinel.
func (e *ResolutionEngine) selectTariff(ctx context.Context, reporting, partner model.Country, item model.Item) (*model.Tariff, error) {
	rows, err := e.loadRows(ctx, reporting, item)
	if err != nil {
		return nil, err
	}

	if t := latestFor(rows, partner.CountryNumber); t != nil {
		return copyOf(t), nil
	}

	var fallback model.Country
	if partner.IsDeveloping {
		fallback, err = e.sentinels.Developing(ctx)
	} else {
		fallback, err = e.sentinels.World(ctx)
	}
	if err != nil {
		return nil, err
	}

	if t := latestFor(rows, fallback.CountryNumber); t != nil {
		return copyOf(t), nil
	}
	return e.noAgreement(ctx, reporting, fallback, item)
}

// loadRows runs CacheLookup, then Fetch and Persist on a miss. The fetch covers every partner
// of (reporting, item), so concurrent callers for that pair share one result.
func (e *ResolutionEngine) loadRows(ctx context.Context, reporting model.Country, item model.Item) ([]model.Tariff, error) {
	key := fmt.Sprintf("current:%d:%s", reporting.CountryNumber, item.ItemCode)
	v, err := e.locker.Do(ctx, key, func(ctx context.Context) (any, error) {
		rows, err := e.tariffs.FindByReportingAndItem(ctx, reporting, item)
		if err != nil || len(rows) > 0 {
			return rows, err
		}
		if e.current == nil {
			return nil, fmt.Errorf("no current-rate provider configured for %d/%s: %w", reporting.CountryNumber, item.ItemCode, model.ErrNotFound)
		}
		slog.InfoContext(ctx, "tariff cache miss, fetching current rates", "reporting", reporting.CountryNumber, "item", item.ItemCode)
		fetched, err := e.current.FetchCurrentRates(ctx, reporting, item)
		if err != nil {
			return nil, err
		}
		return e.tariffs.SaveAll(ctx, fetched)
	})
	if err != nil {
		return nil, err
	}
	// Callers share the slice; latestFor only reads it and the chosen row is copied out.
	return v.([]model.Tariff), nil
}

// noAgreement returns the stored sentinel for (reporting, fallback, item), persisting it on first use.
func (e *ResolutionEngine) noAgreement(ctx context.Context, reporting, fallback model.Country, item model.Item) (*model.Tariff, error) {
	key := fmt.Sprintf("sentinel:%d:%d:%s", reporting.CountryNumber, fallback.CountryNumber, item.ItemCode)
	v, err := e.locker.Do(ctx, key, func(ctx context.Context) (any, error) {
		existing, err := e.tariffs.FindByReportingAndPartnerAndItem(ctx, reporting, fallback, item)
		if err != nil {
			return nil, err
		}
		if t := latestFor(existing, fallback.CountryNumber); t != nil {
			return t, nil
		}
		sentinel := model.NewTariff(reporting, fallback, item, model.NoAgreementRate, e.now(), model.BasisNoTradeAgreement)
		if err := e.tariffs.Save(ctx, &sentinel); err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "persisted no-agreement sentinel",
			"reporting", reporting.CountryNumber, "partner", fallback.CountryNumber, "item", item.ItemCode, "tariffId", sentinel.ID)
		return &sentinel, nil
	})
	if err != nil {
		return nil, err
	}
	t := *v.(*model.Tariff)
	return &t, nil
}

// latestFor returns the row for partner with the most recent effective date, lowest id on ties.
func latestFor(rows []model.Tariff, partner int) *model.Tariff {
	var best *model.Tariff
	for i := range rows {
		row := &rows[i]
		if row.PartnerCountryNumber != partner {
			continue
		}
		if best == nil ||
			row.EffectiveDate.After(best.EffectiveDate) ||
			(row.EffectiveDate.Equal(best.EffectiveDate) && row.ID < best.ID) {
			best = row
		}
	}
	return best
}

func copyOf(t *model.Tariff) *model.Tariff {
	c := *t
	return &c
}

// lookupCountry maps an unknown name onto InvalidArgument.
func lookupCountry(ctx context.Context, countries CountryRepository, role, name string) (*model.Country, error) {
	c, err := countries.FindByName(ctx, name)
	if errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("unknown %s country %q: %w", role, name, model.ErrInvalidArgument)
	}
	return c, err
}
