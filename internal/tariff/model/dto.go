package model

import (
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of effective dates and period bounds.
const DateLayout = "2006-01-02"

// CurrentTariffQueryDTO is the input of a current-rate resolution.
type CurrentTariffQueryDTO struct {
	ReportingCountry string          `json:"reportingCountry"`
	PartnerCountry   string          `json:"partnerCountry"`
	Item             string          `json:"item"`
	ItemCost         decimal.Decimal `json:"itemCost"`
}

// CurrentTariffResponseDTO is the computed result of a current-rate resolution.
type CurrentTariffResponseDTO struct {
	ReportingCountry   string          `json:"reportingCountry"`
	PartnerCountry     string          `json:"partnerCountry"`
	Item               string          `json:"item"`
	TariffRate         decimal.Decimal `json:"tariffRate"`
	TariffAmount       decimal.Decimal `json:"tariffAmount"`
	ItemCostWithTariff decimal.Decimal `json:"itemCostWithTariff"`
	TariffID           uint            `json:"tariffId"`
	Description        string          `json:"description"`
}

// TariffOverviewQueryDTO is the input of a historical overview. Period bounds are optional, inclusive, YYYY-MM-DD.
type TariffOverviewQueryDTO struct {
	ReportingCountry string `json:"reportingCountry"`
	PartnerCountry   string `json:"partnerCountry"`
	Item             string `json:"item"`
	StartDate        string `json:"startDate,omitempty"`
	EndDate          string `json:"endDate,omitempty"`
}

// HistoricalTariffPoint is one dated observation of a series.
type HistoricalTariffPoint struct {
	StartPeriod string          `json:"startPeriod"`
	TariffRate  decimal.Decimal `json:"tariffRate"`
}

// TariffOverviewResponseDTO is an ascending time series for one reporting/partner/item triple.
type TariffOverviewResponseDTO struct {
	ReportingCountry string                  `json:"reportingCountry"`
	PartnerCountry   string                  `json:"partnerCountry"`
	TariffData       []HistoricalTariffPoint `json:"tariffData"`
}

// TariffDetailDTO describes a single persisted tariff.
type TariffDetailDTO struct {
	ID               uint            `json:"id"`
	ReportingCountry string          `json:"reportingCountry"`
	PartnerCountry   string          `json:"partnerCountry"`
	Item             string          `json:"item"`
	TariffRate       decimal.Decimal `json:"tariffRate"`
	EffectiveDate    string          `json:"effectiveDate"`
	Description      string          `json:"description"`
}
