package service

import (
	"context"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

// CountryRepository is the country lookup surface used by the services.
type CountryRepository interface {
	FindByName(ctx context.Context, name string) (*model.Country, error)
	List(ctx context.Context, offset, limit int) ([]model.Country, int64, error)
}

// ItemRepository persists items keyed by code and looked up by normalized key.
type ItemRepository interface {
	FindByName(ctx context.Context, key string) (*model.Item, error)
	FindByCode(ctx context.Context, code string) (*model.Item, error)
	Create(ctx context.Context, item *model.Item) error
	AddAlias(ctx context.Context, key, code string) error
}

// TariffRepository is the append-only relation of tariff facts.
type TariffRepository interface {
	FindByReportingAndItem(ctx context.Context, reporting model.Country, item model.Item) ([]model.Tariff, error)
	FindByReportingAndPartnerAndItem(ctx context.Context, reporting, partner model.Country, item model.Item) ([]model.Tariff, error)
	Save(ctx context.Context, tariff *model.Tariff) error
	SaveAll(ctx context.Context, tariffs []model.Tariff) ([]model.Tariff, error)
	FindByID(ctx context.Context, id uint) (*model.Tariff, error)
}

// CurrentRateProvider fetches the current duty schedule of a reporting country for an item.
type CurrentRateProvider interface {
	FetchCurrentRates(ctx context.Context, reporting model.Country, item model.Item) ([]model.Tariff, error)
}

// HistoricalRateProvider fetches a reported tariff series for a triple.
type HistoricalRateProvider interface {
	FetchHistoricalRates(ctx context.Context, reporting, partner model.Country, item model.Item) ([]model.Tariff, error)
}

// ItemCodeProvider classifies a search term into an item code.
type ItemCodeProvider interface {
	LookupItemCode(ctx context.Context, searchTerm, category string) (string, error)
}
