package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

type itemCodeEnvelope struct {
	Data *struct {
		SixDigitCodes []struct {
			HSCode json.RawMessage `json:"HSCode"`
		} `json:"six_digit_codes"`
	} `json:"data"`
}

// ItemCodeAdapter classifies a free-text noun into a harmonized-system code.
type ItemCodeAdapter struct {
	client *Client
}

func NewItemCodeAdapter(client *Client) *ItemCodeAdapter {
	return &ItemCodeAdapter{client: client}
}

// LookupItemCode returns the best-ranked code for searchTerm within category,
// which is a reporting country number or "wto".
func (a *ItemCodeAdapter) LookupItemCode(ctx context.Context, searchTerm, category string) (string, error) {
	query := url.Values{}
	query.Set("q", searchTerm)
	query.Set("category", category)

	body, err := a.client.get(ctx, "/hs-code-match", query)
	if err != nil {
		return "", err
	}

	var envelope itemCodeEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("malformed item code payload: %w: %v", model.ErrUpstreamFailure, err)
	}
	if envelope.Data == nil || len(envelope.Data.SixDigitCodes) == 0 {
		return "", fmt.Errorf("no item code for %q in %s: %w", searchTerm, category, model.ErrUpstreamFailure)
	}

	code := strings.Trim(strings.TrimSpace(string(envelope.Data.SixDigitCodes[0].HSCode)), `"`)
	if !isDigits(code) {
		return "", fmt.Errorf("non-numeric item code %q for %q: %w", code, searchTerm, model.ErrUpstreamFailure)
	}
	return code, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
