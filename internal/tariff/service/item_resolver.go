package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/OpenNSW/tariff/internal/tariff/model"
	"github.com/OpenNSW/tariff/internal/tariff/normalize"
)

// ItemResolver maps raw item text to a stored Item, classifying unknown items upstream.
type ItemResolver struct {
	normalizer *normalize.Normalizer
	items      ItemRepository
	codes      ItemCodeProvider
}

// NewItemResolver creates an ItemResolver. A nil codes provider turns unknown items into NotFound.
func NewItemResolver(normalizer *normalize.Normalizer, items ItemRepository, codes ItemCodeProvider) *ItemResolver {
	return &ItemResolver{normalizer: normalizer, items: items, codes: codes}
}

// Resolve returns the item stored under the normalized key for reporting, creating it on first use.
func (r *ItemResolver) Resolve(ctx context.Context, rawItem string, reporting model.Country) (*model.Item, error) {
	term := r.normalizer.SearchTerm(rawItem)
	if term == "" {
		return nil, fmt.Errorf("item name is empty: %w", model.ErrInvalidArgument)
	}
	key := r.normalizer.ItemKeyFor(rawItem, reporting)

	item, err := r.items.FindByName(ctx, key)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	if r.codes == nil {
		return nil, fmt.Errorf("item %q: %w", key, model.ErrNotFound)
	}

	category := r.normalizer.Category(reporting)
	code, err := r.codes.LookupItemCode(ctx, term, category)
	if err != nil {
		return nil, fmt.Errorf("failed to classify item %q: %w", term, err)
	}

	if existing, err := r.items.FindByCode(ctx, code); err == nil {
		return r.alias(ctx, key, existing)
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	item = &model.Item{ItemCode: code, ItemName: key}
	if err := r.items.Create(ctx, item); err != nil {
		// A concurrent request may have stored the same code first.
		if existing, findErr := r.items.FindByCode(ctx, code); findErr == nil {
			return r.alias(ctx, key, existing)
		}
		return nil, err
	}
	slog.InfoContext(ctx, "item classified", "key", key, "code", code, "category", category)
	return item, nil
}

// alias records key against an item stored under another key so later lookups skip classification.
func (r *ItemResolver) alias(ctx context.Context, key string, existing *model.Item) (*model.Item, error) {
	if existing.ItemName == key {
		return existing, nil
	}
	if err := r.items.AddAlias(ctx, key, existing.ItemCode); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "item code already stored under another key", "key", key, "code", existing.ItemCode, "storedKey", existing.ItemName)
	return existing, nil
}
