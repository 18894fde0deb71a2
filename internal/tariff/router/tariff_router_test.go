package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

type MockCurrentResolver struct {
	mock.Mock
}

func (m *MockCurrentResolver) ResolveCurrent(ctx context.Context, query model.CurrentTariffQueryDTO) (*model.CurrentTariffResponseDTO, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CurrentTariffResponseDTO), args.Error(1)
}

type MockOverviewAssembler struct {
	mock.Mock
}

func (m *MockOverviewAssembler) GetOverview(ctx context.Context, query model.TariffOverviewQueryDTO) (*model.TariffOverviewResponseDTO, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TariffOverviewResponseDTO), args.Error(1)
}

type MockCountryLister struct {
	mock.Mock
}

func (m *MockCountryLister) ListCountries(ctx context.Context, filter model.CountryFilter) (*model.CountryListResult, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CountryListResult), args.Error(1)
}

type MockTariffGetter struct {
	mock.Mock
}

func (m *MockTariffGetter) GetTariff(ctx context.Context, id uint) (*model.TariffDetailDTO, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TariffDetailDTO), args.Error(1)
}

type routerFixture struct {
	current   *MockCurrentResolver
	overview  *MockOverviewAssembler
	countries *MockCountryLister
	tariffs   *MockTariffGetter
	mux       *http.ServeMux
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		current:   &MockCurrentResolver{},
		overview:  &MockOverviewAssembler{},
		countries: &MockCountryLister{},
		tariffs:   &MockTariffGetter{},
	}
	tr := NewTariffRouter(f.current, f.overview, f.countries, f.tariffs)
	f.mux = http.NewServeMux()
	f.mux.HandleFunc("GET /api/tariff/countries", tr.HandleGetCountries)
	f.mux.HandleFunc("POST /api/tariff/current", tr.HandleResolveCurrent)
	f.mux.HandleFunc("POST /api/tariff/past", tr.HandleGetOverview)
	f.mux.HandleFunc("GET /api/tariff/tariffs/{tariffId}", tr.HandleGetTariff)
	return f
}

func (f *routerFixture) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHandleResolveCurrent(t *testing.T) {
	f := newRouterFixture()
	want := model.CurrentTariffQueryDTO{
		ReportingCountry: "singapore",
		PartnerCountry:   "china",
		Item:             "slippers",
		ItemCost:         decimal.RequireFromString("19.99"),
	}
	f.current.On("ResolveCurrent", mock.Anything, mock.MatchedBy(func(q model.CurrentTariffQueryDTO) bool {
		return q.ReportingCountry == want.ReportingCountry && q.Item == want.Item && q.ItemCost.Equal(want.ItemCost)
	})).Return(&model.CurrentTariffResponseDTO{
		ReportingCountry:   "singapore",
		PartnerCountry:     "china",
		Item:               "slipper",
		TariffRate:         decimal.RequireFromString("12.5"),
		TariffAmount:       decimal.RequireFromString("2.49875"),
		ItemCostWithTariff: decimal.RequireFromString("22.48875"),
		TariffID:           3,
		Description:        model.BasisSpecialRate,
	}, nil)

	rec := f.do(http.MethodPost, "/api/tariff/current",
		`{"reportingCountry":"singapore","partnerCountry":"china","item":"slippers","itemCost":19.99}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got model.CurrentTariffResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, uint(3), got.TariffID)
	assert.True(t, decimal.RequireFromString("22.48875").Equal(got.ItemCostWithTariff))
	f.current.AssertExpectations(t)
}

func TestHandleResolveCurrent_BadRequests(t *testing.T) {
	f := newRouterFixture()

	tests := []struct {
		name string
		body string
	}{
		{name: "Malformed", body: `{"reportingCountry":`},
		{name: "MissingItem", body: `{"reportingCountry":"singapore","partnerCountry":"china","itemCost":1}`},
		{name: "BadCost", body: `{"reportingCountry":"singapore","partnerCountry":"china","item":"x","itemCost":"abc"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/api/tariff/current", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, errorBody(t, rec))
		})
	}
	f.current.AssertNotCalled(t, "ResolveCurrent", mock.Anything, mock.Anything)
}

func TestHandleResolveCurrent_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "InvalidArgument", err: fmt.Errorf("unknown partner country: %w", model.ErrInvalidArgument), want: http.StatusBadRequest},
		{name: "NotFound", err: fmt.Errorf("sentinel: %w", model.ErrNotFound), want: http.StatusNotFound},
		{name: "UpstreamFailure", err: fmt.Errorf("status 404: %w", model.ErrUpstreamFailure), want: http.StatusNotFound},
		{name: "Internal", err: errors.New("database is locked"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture()
			f.current.On("ResolveCurrent", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := f.do(http.MethodPost, "/api/tariff/current",
				`{"reportingCountry":"singapore","partnerCountry":"china","item":"slippers","itemCost":"10"}`)
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, errorBody(t, rec), tt.err.Error())
		})
	}
}

func TestHandleGetOverview(t *testing.T) {
	f := newRouterFixture()
	f.overview.On("GetOverview", mock.Anything, model.TariffOverviewQueryDTO{
		ReportingCountry: "singapore",
		PartnerCountry:   "china",
		Item:             "slippers",
		StartDate:        "2018-01-01",
	}).Return(&model.TariffOverviewResponseDTO{
		ReportingCountry: "singapore",
		PartnerCountry:   "china",
		TariffData: []model.HistoricalTariffPoint{
			{StartPeriod: "2018-01-01", TariffRate: decimal.NewFromInt(5)},
			{StartPeriod: "2019-01-01", TariffRate: decimal.NewFromInt(4)},
		},
	}, nil)

	rec := f.do(http.MethodPost, "/api/tariff/past",
		`{"reportingCountry":"singapore","partnerCountry":"china","item":"slippers","startDate":"2018-01-01"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.TariffOverviewResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.TariffData, 2)
	assert.Equal(t, "2019-01-01", got.TariffData[1].StartPeriod)

	rec = f.do(http.MethodPost, "/api/tariff/past", `{"reportingCountry":"singapore"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetCountries(t *testing.T) {
	f := newRouterFixture()
	f.countries.On("ListCountries", mock.Anything, mock.MatchedBy(func(filter model.CountryFilter) bool {
		return filter.Offset != nil && *filter.Offset == 10 && filter.Limit != nil && *filter.Limit == 5
	})).Return(&model.CountryListResult{
		TotalCount: 1,
		Countries:  []model.Country{{CountryNumber: 702, CountryCode: "SG", CountryName: "singapore"}},
		Offset:     10,
		Limit:      5,
	}, nil)

	rec := f.do(http.MethodGet, "/api/tariff/countries?offset=10&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.CountryListResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.TotalCount)
	assert.Equal(t, "singapore", got.Countries[0].CountryName)

	rec = f.do(http.MethodGet, "/api/tariff/countries?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(http.MethodGet, "/api/tariff/countries?offset=-x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetTariff(t *testing.T) {
	f := newRouterFixture()
	f.tariffs.On("GetTariff", mock.Anything, uint(7)).Return(&model.TariffDetailDTO{
		ID:               7,
		ReportingCountry: "singapore",
		PartnerCountry:   "world",
		Item:             "slipper",
		TariffRate:       decimal.NewFromInt(-1),
		EffectiveDate:    "2024-03-01",
		Description:      model.BasisNoTradeAgreement,
	}, nil)
	f.tariffs.On("GetTariff", mock.Anything, uint(8)).Return(nil, fmt.Errorf("tariff 8: %w", model.ErrNotFound))

	rec := f.do(http.MethodGet, "/api/tariff/tariffs/7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.TariffDetailDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.BasisNoTradeAgreement, got.Description)

	rec = f.do(http.MethodGet, "/api/tariff/tariffs/8", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/api/tariff/tariffs/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
