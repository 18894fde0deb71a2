package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Basis labels written by the provider adapters and the resolution engine.
const (
	BasisGeneralRate       = "General Rate of Duty"
	BasisSpecialRate       = "Special Rate of Duty"
	BasisNoTradeAgreement  = "No trade agreement found"
	BasisHistoricalRate    = "Reported Tariff"
	BasisHistoricalAllRate = "Reported Tariff (all partners)"
)

// RateScale is the number of fractional digits kept for a rate, matching the column scale.
const RateScale = 10

// NoAgreementRate is the sentinel rate persisted when no applicable rate exists.
var NoAgreementRate = decimal.NewFromInt(-1)

// Tariff is an observed rate fact. Rows are append-only.
type Tariff struct {
	ID                     uint            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ReportingCountryNumber int             `gorm:"column:reporting_country_number;not null;index:idx_tariff_lookup" json:"reportingCountryNumber"`
	ReportingCountry       Country         `gorm:"foreignKey:ReportingCountryNumber;references:CountryNumber" json:"-"`
	PartnerCountryNumber   int             `gorm:"column:partner_country_number;not null;index:idx_tariff_lookup" json:"partnerCountryNumber"`
	PartnerCountry         Country         `gorm:"foreignKey:PartnerCountryNumber;references:CountryNumber" json:"-"`
	ItemCode               string          `gorm:"type:varchar(20);column:item_code;not null;index:idx_tariff_lookup" json:"itemCode"`
	Item                   Item            `gorm:"foreignKey:ItemCode;references:ItemCode" json:"-"`
	PercentageRate         decimal.Decimal `gorm:"type:numeric(20,10);column:percentage_rate;not null" json:"percentageRate"` // Negative means no agreement
	EffectiveDate          time.Time       `gorm:"type:date;column:effective_date;not null" json:"effectiveDate"`
	Description            string          `gorm:"type:text;column:description" json:"description"`
	CreatedAt              time.Time       `gorm:"column:created_at" json:"createdAt"`
}

func (t *Tariff) TableName() string {
	return "tariffs"
}

// IsNoAgreement reports whether the row is a synthesized "no agreement" sentinel.
func (t *Tariff) IsNoAgreement() bool {
	return t.PercentageRate.IsNegative()
}

// NewTariff builds an unsaved fact for the given parties. The rate is rounded to RateScale
// so the value held in memory is the one read back from the store.
func NewTariff(reporting, partner Country, item Item, rate decimal.Decimal, effective time.Time, basis string) Tariff {
	return Tariff{
		ReportingCountryNumber: reporting.CountryNumber,
		ReportingCountry:       reporting,
		PartnerCountryNumber:   partner.CountryNumber,
		PartnerCountry:         partner,
		ItemCode:               item.ItemCode,
		Item:                   item,
		PercentageRate:         rate.Round(RateScale),
		EffectiveDate:          DateOf(effective),
		Description:            basis,
	}
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
