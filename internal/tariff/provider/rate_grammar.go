package provider

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// specialRatePattern is "<lead> (<codes>) <tail>". The code list may not nest.
var specialRatePattern = regexp.MustCompile(`^([^(]*)\(([^()]*)\)\s*(.*)$`)

// numberPattern is the leading numeric part of a rate string.
var numberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)

// SpecialRate is a parsed preferential-rate expression such as "Free (A+,AU) " or "(CN,IN) 5%".
type SpecialRate struct {
	Codes []string        // upper-cased alpha codes, empty when the list is absent or malformed
	Rate  decimal.Decimal // fraction, "5%" is 0.05
}

// ParseSpecialRate parses the custom-countries expression.
// The rate text is what follows the closing paren, or what precedes the opening one when nothing follows.
func ParseSpecialRate(s string) SpecialRate {
	m := specialRatePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return SpecialRate{Rate: decimal.Zero}
	}

	var codes []string
	for _, code := range strings.Split(m[2], ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			codes = append(codes, code)
		}
	}

	rateText := strings.TrimSpace(m[3])
	if rateText == "" {
		rateText = strings.TrimSpace(m[1])
	}
	return SpecialRate{Codes: codes, Rate: percentToFraction(rateText)}
}

// percentToFraction maps "free" to 0, "<n>%" to n/100 and anything without a percent sign to 0.
func percentToFraction(s string) decimal.Decimal {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "free" {
		return decimal.Zero
	}
	idx := strings.Index(s, "%")
	if idx < 0 {
		return decimal.Zero
	}
	value, ok := leadingNumber(s[:idx])
	if !ok {
		slog.Debug("unparsable special rate", "rate", s)
		return decimal.Zero
	}
	return value.Div(hundred)
}

// ParseGeneralRate reads the general duty as a percentage. "Free", blanks and garbage are 0.
func ParseGeneralRate(s string) decimal.Decimal {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "free" {
		return decimal.Zero
	}
	value, ok := leadingNumber(strings.TrimSuffix(s, "%"))
	if !ok {
		slog.Debug("unparsable general rate", "rate", s)
		return decimal.Zero
	}
	return value
}

// ParseTableRate reads a table-row rate as a percentage. A rate without "%" is 0.
func ParseTableRate(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	idx := strings.Index(s, "%")
	if idx < 0 {
		return decimal.Zero
	}
	value, ok := leadingNumber(s[:idx])
	if !ok {
		slog.Debug("unparsable table rate", "rate", s)
		return decimal.Zero
	}
	return value
}

func leadingNumber(s string) (decimal.Decimal, bool) {
	num := numberPattern.FindString(strings.TrimSpace(s))
	if num == "" {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

// RegionKind says how a table-row region label maps onto a partner country.
type RegionKind int

const (
	RegionNamed      RegionKind = iota // fuzzy match against stored country names
	RegionWorld                        // MFN
	RegionDeveloping                   // least-developed preferential
)

const ldcPreferentialLabel = "LDCs Preferential Tariff"

// ClassifyRegion classifies a table-row region label.
func ClassifyRegion(label string) RegionKind {
	switch {
	case strings.Contains(label, "MFN"):
		return RegionWorld
	case strings.TrimSpace(label) == ldcPreferentialLabel:
		return RegionDeveloping
	default:
		return RegionNamed
	}
}

// SplitCountryNames splits the raw applicable-country field into trimmed names
func SplitCountryNames(raw string) []string {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "ASEAN:", ""))
	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
