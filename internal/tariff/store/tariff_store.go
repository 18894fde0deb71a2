package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

// TariffStore is the append-only relation of resolved tariff facts.
// No uniqueness is enforced across (reporting, partner, item, date).
type TariffStore struct {
	db *gorm.DB
}

// NewTariffStore creates a new TariffStore
func NewTariffStore(db *gorm.DB) *TariffStore {
	return &TariffStore{db: db}
}

// FindByReportingAndItem retrieves every fact for a reporting country and item, oldest row first
func (s *TariffStore) FindByReportingAndItem(ctx context.Context, reporting model.Country, item model.Item) ([]model.Tariff, error) {
	var tariffs []model.Tariff
	err := s.db.WithContext(ctx).
		Where("reporting_country_number = ? AND item_code = ?", reporting.CountryNumber, item.ItemCode).
		Order("id").
		Find(&tariffs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query tariffs for %d/%s: %w", reporting.CountryNumber, item.ItemCode, err)
	}
	return tariffs, nil
}

// FindByReportingAndPartnerAndItem retrieves every fact for a reporting/partner/item triple, oldest row first
func (s *TariffStore) FindByReportingAndPartnerAndItem(ctx context.Context, reporting, partner model.Country, item model.Item) ([]model.Tariff, error) {
	var tariffs []model.Tariff
	err := s.db.WithContext(ctx).
		Where("reporting_country_number = ? AND partner_country_number = ? AND item_code = ?",
			reporting.CountryNumber, partner.CountryNumber, item.ItemCode).
		Order("id").
		Find(&tariffs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query tariffs for %d/%d/%s: %w",
			reporting.CountryNumber, partner.CountryNumber, item.ItemCode, err)
	}
	return tariffs, nil
}

// Save appends a single fact and assigns its id
func (s *TariffStore) Save(ctx context.Context, tariff *model.Tariff) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(tariff).Error; err != nil {
		return fmt.Errorf("failed to save tariff: %w", err)
	}
	return nil
}

// SaveAll appends a batch of facts in one transaction and returns them with ids assigned
func (s *TariffStore) SaveAll(ctx context.Context, tariffs []model.Tariff) ([]model.Tariff, error) {
	if len(tariffs) == 0 {
		return tariffs, nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(&tariffs).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save %d tariffs: %w", len(tariffs), err)
	}
	return tariffs, nil
}

// FindByID retrieves a fact with its countries and item loaded
func (s *TariffStore) FindByID(ctx context.Context, id uint) (*model.Tariff, error) {
	var tariff model.Tariff
	err := s.db.WithContext(ctx).
		Preload("ReportingCountry").
		Preload("PartnerCountry").
		Preload("Item").
		First(&tariff, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "tariff %d", id)
	}
	return &tariff, nil
}
