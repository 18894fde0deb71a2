// Package normalize turns untrusted item and country text into stored lookup keys.
package normalize

import (
	"strconv"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

// GeneralCategory is the item-code search category used outside customs-differentiated countries.
const GeneralCategory = "wto"

// Singularizer maps a (possibly plural) noun phrase to its singular form. It must be pure.
type Singularizer func(word string) string

// InflectionSingularizer singularizes the trailing noun of a phrase with English inflection rules.
func InflectionSingularizer(word string) string {
	return inflection.Singular(word)
}

// Normalizer builds canonical item keys. It is immutable and safe for concurrent use.
type Normalizer struct {
	singularize Singularizer
	customs     map[int]struct{}
}

// NewNormalizer creates a normalizer. A nil singularizer falls back to InflectionSingularizer.
func NewNormalizer(singularize Singularizer, customsDifferentiated []int) *Normalizer {
	if singularize == nil {
		singularize = InflectionSingularizer
	}
	customs := make(map[int]struct{}, len(customsDifferentiated))
	for _, n := range customsDifferentiated {
		customs[n] = struct{}{}
	}
	return &Normalizer{singularize: singularize, customs: customs}
}

// IsCustomsDifferentiated reports whether a reporting country keeps its own item classification.
func (n *Normalizer) IsCustomsDifferentiated(countryNumber int) bool {
	_, ok := n.customs[countryNumber]
	return ok
}

// SearchTerm lowercases, strips commas and singularizes a raw item name.
func (n *Normalizer) SearchTerm(rawItemName string) string {
	term := strings.ToLower(rawItemName)
	term = strings.ReplaceAll(term, ",", "")
	term = strings.Join(strings.Fields(term), " ")
	return n.singularize(term)
}

// ItemKey returns the stored item key: the search term suffixed by the reporting country number
// when customs-differentiated, otherwise by "general".
func (n *Normalizer) ItemKey(rawItemName string, reportingCountryNumber int, customsDifferentiated bool) string {
	term := n.SearchTerm(rawItemName)
	if customsDifferentiated {
		return term + strconv.Itoa(reportingCountryNumber)
	}
	return term + model.GeneralItemSuffix
}

// ItemKeyFor is ItemKey with the customs classification taken from the configured set.
func (n *Normalizer) ItemKeyFor(rawItemName string, reporting model.Country) string {
	return n.ItemKey(rawItemName, reporting.CountryNumber, n.IsCustomsDifferentiated(reporting.CountryNumber))
}

// Category returns the item-code search category for a reporting country.
func (n *Normalizer) Category(reporting model.Country) string {
	if n.IsCustomsDifferentiated(reporting.CountryNumber) {
		return strconv.Itoa(reporting.CountryNumber)
	}
	return GeneralCategory
}

// CountryKey trims and lowercases a raw country name.
func (n *Normalizer) CountryKey(rawCountryName string) string {
	return model.NormalizeCountryKey(rawCountryName)
}
