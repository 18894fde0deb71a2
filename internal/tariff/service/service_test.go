package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/OpenNSW/tariff/internal/lock"
	"github.com/OpenNSW/tariff/internal/tariff/model"
	"github.com/OpenNSW/tariff/internal/tariff/normalize"
	"github.com/OpenNSW/tariff/internal/tariff/store"
	"github.com/OpenNSW/tariff/internal/tariff/store/storetest"
)

var customsDifferentiated = []int{96, 156, 918, 356, 360, 392, 410, 458, 104, 586, 608, 702, 158, 764, 840, 704, 784}

// MockCurrentRateProvider
type MockCurrentRateProvider struct {
	mock.Mock
}

func (m *MockCurrentRateProvider) FetchCurrentRates(ctx context.Context, reporting model.Country, item model.Item) ([]model.Tariff, error) {
	args := m.Called(ctx, reporting, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tariff), args.Error(1)
}

// MockHistoricalRateProvider
type MockHistoricalRateProvider struct {
	mock.Mock
}

func (m *MockHistoricalRateProvider) FetchHistoricalRates(ctx context.Context, reporting, partner model.Country, item model.Item) ([]model.Tariff, error) {
	args := m.Called(ctx, reporting, partner, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tariff), args.Error(1)
}

// MockItemCodeProvider
type MockItemCodeProvider struct {
	mock.Mock
}

func (m *MockItemCodeProvider) LookupItemCode(ctx context.Context, searchTerm, category string) (string, error) {
	args := m.Called(ctx, searchTerm, category)
	return args.String(0), args.Error(1)
}

// fixture wires the services over an in-memory store.
type fixture struct {
	db         *gorm.DB
	countries  *store.CountryStore
	items      *store.ItemStore
	tariffs    *store.TariffStore
	sentinels  *SentinelService
	resolver   *ItemResolver
	current    *MockCurrentRateProvider
	historical *MockHistoricalRateProvider
	codes      *MockItemCodeProvider
	engine     *ResolutionEngine
	overview   *OverviewService
}

func newFixture(t *testing.T, countries ...model.Country) *fixture {
	t.Helper()
	db := storetest.Open(t)
	storetest.Seed(t, db, countries...)

	f := &fixture{
		db:         db,
		countries:  store.NewCountryStore(db),
		items:      store.NewItemStore(db),
		tariffs:    store.NewTariffStore(db),
		current:    &MockCurrentRateProvider{},
		historical: &MockHistoricalRateProvider{},
		codes:      &MockItemCodeProvider{},
	}
	f.sentinels = NewSentinelService(f.countries, "world", "developing")
	f.resolver = NewItemResolver(normalize.NewNormalizer(nil, customsDifferentiated), f.items, f.codes)
	locker := lock.NewLocalLocker()
	f.engine = NewResolutionEngine(f.countries, f.tariffs, f.resolver, f.current, f.sentinels, locker)
	f.engine.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	f.overview = NewOverviewService(f.countries, f.tariffs, f.resolver, f.historical, locker)
	return f
}

func (f *fixture) item(t *testing.T, code, key string) model.Item {
	t.Helper()
	item := model.Item{ItemCode: code, ItemName: key}
	require.NoError(t, f.items.Create(context.Background(), &item))
	return item
}

func (f *fixture) tariff(t *testing.T, reporting, partner model.Country, item model.Item, rate string, date string, basis string) model.Tariff {
	t.Helper()
	effective, err := time.Parse(model.DateLayout, date)
	require.NoError(t, err)
	row := model.NewTariff(reporting, partner, item, decimal.RequireFromString(rate), effective, basis)
	require.NoError(t, f.tariffs.Save(context.Background(), &row))
	return row
}

func (f *fixture) countRows(t *testing.T, reporting, partner model.Country, item model.Item) int {
	t.Helper()
	rows, err := f.tariffs.FindByReportingAndPartnerAndItem(context.Background(), reporting, partner, item)
	require.NoError(t, err)
	return len(rows)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
