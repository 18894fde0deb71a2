package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/OpenNSW/tariff/internal/tariff/model"
	"github.com/OpenNSW/tariff/internal/tariff/store"
	"github.com/OpenNSW/tariff/internal/tariff/store/storetest"
)

type fixedSentinels struct {
	world      model.Country
	developing model.Country
}

func (s fixedSentinels) World(ctx context.Context) (model.Country, error) {
	return s.world, nil
}

func (s fixedSentinels) Developing(ctx context.Context) (model.Country, error) {
	return s.developing, nil
}

type recordingArchiver struct {
	mu        sync.Mutex
	providers []string
}

func (r *recordingArchiver) Archive(ctx context.Context, provider string, body []byte) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, provider)
	return provider + "/key.json", nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts Options) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	opts.BaseURL = server.URL
	if opts.Timeout == 0 {
		opts.Timeout = 2 * time.Second
	}
	return NewClient("test-provider", opts)
}

func newCountryStore(t *testing.T) *store.CountryStore {
	t.Helper()
	return store.NewCountryStore(storetest.OpenSeeded(t))
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)
}

func partnerNumbers(tariffs []model.Tariff) []int {
	numbers := make([]int, 0, len(tariffs))
	for _, tr := range tariffs {
		numbers = append(numbers, tr.PartnerCountryNumber)
	}
	return numbers
}

func writeJSON(t *testing.T, w http.ResponseWriter, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	_, err := w.Write([]byte(body))
	require.NoError(t, err)
}
