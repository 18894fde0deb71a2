package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

// ItemStore handles database operations for items
type ItemStore struct {
	db *gorm.DB
}

// NewItemStore creates a new ItemStore
func NewItemStore(db *gorm.DB) *ItemStore {
	return &ItemStore{db: db}
}

// FindByName retrieves an item by its exact normalized key, or by a recorded alias of it
func (s *ItemStore) FindByName(ctx context.Context, key string) (*model.Item, error) {
	var item model.Item
	err := s.db.WithContext(ctx).Where("item_name = ?", key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.db.WithContext(ctx).
			Joins("JOIN item_aliases ON item_aliases.item_code = items.item_code").
			Where("item_aliases.alias = ?", key).
			First(&item).Error
	}
	if err != nil {
		return nil, translate(err, "item %q", key)
	}
	return &item, nil
}

// FindByCode retrieves an item by its HS code
func (s *ItemStore) FindByCode(ctx context.Context, code string) (*model.Item, error) {
	var item model.Item
	if err := s.db.WithContext(ctx).First(&item, "item_code = ?", code).Error; err != nil {
		return nil, translate(err, "item code %q", code)
	}
	return &item, nil
}

// Create inserts a new item
func (s *ItemStore) Create(ctx context.Context, item *model.Item) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create item %s: %w", item.ItemCode, err)
	}
	return nil
}

// AddAlias maps another normalized key onto an existing item code. Re-adding a key is a no-op.
func (s *ItemStore) AddAlias(ctx context.Context, key, code string) error {
	alias := model.ItemAlias{Alias: key, ItemCode: code}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&alias).Error; err != nil {
		return fmt.Errorf("failed to alias item %s as %q: %w", code, key, err)
	}
	return nil
}
