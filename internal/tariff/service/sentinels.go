package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

// SentinelService resolves the world and developing grouping countries by their configured names.
// A handle is cached once found; a missing one is retried on the next call.
type SentinelService struct {
	countries      CountryRepository
	worldName      string
	developingName string

	mu         sync.Mutex
	world      *model.Country
	developing *model.Country
}

func NewSentinelService(countries CountryRepository, worldName, developingName string) *SentinelService {
	return &SentinelService{
		countries:      countries,
		worldName:      worldName,
		developingName: developingName,
	}
}

// World returns the MFN/default grouping country
func (s *SentinelService) World(ctx context.Context) (model.Country, error) {
	return s.resolve(ctx, &s.world, s.worldName)
}

// Developing returns the developing-bloc grouping country
func (s *SentinelService) Developing(ctx context.Context) (model.Country, error) {
	return s.resolve(ctx, &s.developing, s.developingName)
}

// Preload resolves both handles, logging the ones that are missing.
func (s *SentinelService) Preload(ctx context.Context) error {
	var firstErr error
	for _, fn := range []func(context.Context) (model.Country, error){s.World, s.Developing} {
		c, err := fn(ctx)
		if err != nil {
			slog.WarnContext(ctx, "sentinel country unavailable", "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		slog.InfoContext(ctx, "sentinel country resolved", "name", c.CountryName, "number", c.CountryNumber)
	}
	return firstErr
}

func (s *SentinelService) resolve(ctx context.Context, cache **model.Country, name string) (model.Country, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if *cache != nil {
		return **cache, nil
	}
	c, err := s.countries.FindByName(ctx, name)
	if err != nil {
		return model.Country{}, fmt.Errorf("sentinel country %q: %w", name, err)
	}
	*cache = c
	return *c, nil
}
