package model

import (
	"fmt"
	"strings"
)

// Country is a trading nation, or one of the two sentinel groupings (world, developing).
type Country struct {
	CountryNumber int    `gorm:"column:country_number;primaryKey;autoIncrement:false" json:"countryNumber"` // ISO numeric code, immutable
	CountryCode   string `gorm:"type:varchar(3);column:country_code;not null;index" json:"countryCode"`     // Alpha code
	CountryName   string `gorm:"type:varchar(100);column:country_name;not null;unique" json:"countryName"`  // Lower-cased canonical name
	IsDeveloping  bool   `gorm:"column:is_developing;not null;default:false" json:"isDeveloping"`
}

func (c *Country) TableName() string {
	return "countries"
}

// PaddedNumber returns the country number zero-padded to three digits, as the providers expect.
func (c *Country) PaddedNumber() string {
	return fmt.Sprintf("%03d", c.CountryNumber)
}

// NormalizeCountryKey turns a raw country name into its lookup key.
func NormalizeCountryKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// CountryFilter will be used when listing countries
type CountryFilter struct {
	Offset *int `json:"offset,omitempty"`
	Limit  *int `json:"limit,omitempty"`
}

// CountryListResult represents the result of listing countries with pagination
type CountryListResult struct {
	TotalCount int64     `json:"totalCount"`
	Countries  []Country `json:"countries"`
	Offset     int       `json:"offset"`
	Limit      int       `json:"limit"`
}
