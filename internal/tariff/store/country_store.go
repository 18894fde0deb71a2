// Package store persists countries, items and tariff facts through GORM.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

// CountryStore handles database operations for countries
type CountryStore struct {
	db *gorm.DB
}

// NewCountryStore creates a new CountryStore
func NewCountryStore(db *gorm.DB) *CountryStore {
	return &CountryStore{db: db}
}

// FindByNumber retrieves a country by its numeric code
func (s *CountryStore) FindByNumber(ctx context.Context, number int) (*model.Country, error) {
	var country model.Country
	if err := s.db.WithContext(ctx).First(&country, "country_number = ?", number).Error; err != nil {
		return nil, translate(err, "country %d", number)
	}
	return &country, nil
}

// FindByName retrieves a country by its exact (case-insensitive) name
func (s *CountryStore) FindByName(ctx context.Context, name string) (*model.Country, error) {
	key := model.NormalizeCountryKey(name)
	if key == "" {
		return nil, fmt.Errorf("country name is empty: %w", model.ErrNotFound)
	}
	var country model.Country
	if err := s.db.WithContext(ctx).Where("LOWER(country_name) = ?", key).First(&country).Error; err != nil {
		return nil, translate(err, "country %q", key)
	}
	return &country, nil
}

// FindByCode retrieves the first country with the given alpha code
func (s *CountryStore) FindByCode(ctx context.Context, code string) (*model.Country, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("country code is empty: %w", model.ErrNotFound)
	}
	var country model.Country
	if err := s.db.WithContext(ctx).Where("UPPER(country_code) = ?", code).First(&country).Error; err != nil {
		return nil, translate(err, "country code %q", code)
	}
	return &country, nil
}

// FindFirstByNameContaining retrieves the first country whose name contains the fragment, ignoring case
func (s *CountryStore) FindFirstByNameContaining(ctx context.Context, fragment string) (*model.Country, error) {
	key := model.NormalizeCountryKey(fragment)
	if key == "" {
		return nil, fmt.Errorf("country name fragment is empty: %w", model.ErrNotFound)
	}
	var country model.Country
	err := s.db.WithContext(ctx).
		Where(`LOWER(country_name) LIKE ? ESCAPE '\'`, "%"+escapeLike(key)+"%").
		First(&country).Error
	if err != nil {
		return nil, translate(err, "country containing %q", key)
	}
	return &country, nil
}

// List retrieves a page of countries ordered by name along with the total count
func (s *CountryStore) List(ctx context.Context, offset, limit int) ([]model.Country, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Country{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count countries: %w", err)
	}

	var countries []model.Country
	if err := s.db.WithContext(ctx).Order("country_name").Offset(offset).Limit(limit).Find(&countries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list countries: %w", err)
	}
	return countries, total, nil
}

// Count returns the number of stored countries
func (s *CountryStore) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Country{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count countries: %w", err)
	}
	return total, nil
}

// Save creates or replaces a country keyed by its number
func (s *CountryStore) Save(ctx context.Context, country *model.Country) error {
	country.CountryName = model.NormalizeCountryKey(country.CountryName)
	if err := s.db.WithContext(ctx).Save(country).Error; err != nil {
		return fmt.Errorf("failed to save country %d: %w", country.CountryNumber, err)
	}
	return nil
}

// translate maps gorm.ErrRecordNotFound onto model.ErrNotFound
func translate(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, model.ErrNotFound)
	}
	return fmt.Errorf("failed to query %s: %w", what, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
