package service

import (
	"context"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

// TariffService exposes persisted tariff facts by id
type TariffService struct {
	tariffs TariffRepository
}

func NewTariffService(tariffs TariffRepository) *TariffService {
	return &TariffService{tariffs: tariffs}
}

// GetTariff retrieves one fact with its countries and item display name
func (s *TariffService) GetTariff(ctx context.Context, id uint) (*model.TariffDetailDTO, error) {
	tariff, err := s.tariffs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.TariffDetailDTO{
		ID:               tariff.ID,
		ReportingCountry: tariff.ReportingCountry.CountryName,
		PartnerCountry:   tariff.PartnerCountry.CountryName,
		Item:             tariff.Item.DisplayName(),
		TariffRate:       tariff.PercentageRate,
		EffectiveDate:    tariff.EffectiveDate.Format(model.DateLayout),
		Description:      tariff.Description,
	}, nil
}
