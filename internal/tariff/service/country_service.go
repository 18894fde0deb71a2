package service

import (
	"context"

	"github.com/OpenNSW/tariff/internal/tariff/model"
	"github.com/OpenNSW/tariff/utils"
)

// CountryService lists stored countries
type CountryService struct {
	countries CountryRepository
}

func NewCountryService(countries CountryRepository) *CountryService {
	return &CountryService{countries: countries}
}

// ListCountries retrieves a page of countries ordered by name
func (s *CountryService) ListCountries(ctx context.Context, filter model.CountryFilter) (*model.CountryListResult, error) {
	offset, limit := utils.GetPaginationParams(filter.Offset, filter.Limit)

	countries, total, err := s.countries.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	return &model.CountryListResult{
		TotalCount: total,
		Countries:  countries,
		Offset:     offset,
		Limit:      limit,
	}, nil
}
