package provider

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

func TestItemCodeAdapter_LookupItemCode(t *testing.T) {
	adapter := NewItemCodeAdapter(newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hs-code-match", r.URL.Path)
		assert.Equal(t, "tennis shoe", r.URL.Query().Get("q"))
		assert.Equal(t, "840", r.URL.Query().Get("category"))
		writeJSON(t, w, `{"data":{"six_digit_codes":[
			{"searchTerm":"tennis shoe","HSCode":"640411","AccuracyRank":"1"},
			{"searchTerm":"tennis shoe","HSCode":"640419","AccuracyRank":"2"}
		]}}`)
	}, Options{}))

	code, err := adapter.LookupItemCode(context.Background(), "tennis shoe", "840")
	require.NoError(t, err)
	assert.Equal(t, "640411", code)
}

func TestItemCodeAdapter_NumericCodeKeepsDigits(t *testing.T) {
	adapter := NewItemCodeAdapter(newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, `{"data":{"six_digit_codes":[{"HSCode":640399}]}}`)
	}, Options{}))

	code, err := adapter.LookupItemCode(context.Background(), "shoe", "wto")
	require.NoError(t, err)
	assert.Equal(t, "640399", code)
}

func TestItemCodeAdapter_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "NotFound", handler: func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }},
		{name: "NoData", handler: func(w http.ResponseWriter, r *http.Request) { writeJSON(t, w, `{}`) }},
		{name: "EmptyList", handler: func(w http.ResponseWriter, r *http.Request) { writeJSON(t, w, `{"data":{"six_digit_codes":[]}}`) }},
		{name: "NonNumeric", handler: func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, `{"data":{"six_digit_codes":[{"HSCode":"64.02"}]}}`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := NewItemCodeAdapter(newTestClient(t, tt.handler, Options{}))
			_, err := adapter.LookupItemCode(context.Background(), "shoe", "wto")
			assert.ErrorIs(t, err, model.ErrUpstreamFailure)
		})
	}
}
