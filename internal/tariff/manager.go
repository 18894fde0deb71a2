package tariff

import (
	"context"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/OpenNSW/tariff/internal/bootstrap"
	"github.com/OpenNSW/tariff/internal/config"
	"github.com/OpenNSW/tariff/internal/database"
	"github.com/OpenNSW/tariff/internal/lock"
	"github.com/OpenNSW/tariff/internal/tariff/model"
	"github.com/OpenNSW/tariff/internal/tariff/normalize"
	"github.com/OpenNSW/tariff/internal/tariff/provider"
	"github.com/OpenNSW/tariff/internal/tariff/router"
	"github.com/OpenNSW/tariff/internal/tariff/service"
	"github.com/OpenNSW/tariff/internal/tariff/store"
)

// Provider names used in logs and archive keys.
const (
	CurrentRateProviderName    = "current-rate"
	HistoricalRateProviderName = "historical-rate"
)

// Manager coordinates the tariff stores, providers, services and router
type Manager struct {
	db             *gorm.DB
	csvPath        string
	sentinels      *service.SentinelService
	loader         *bootstrap.Loader
	engine         *service.ResolutionEngine
	overview       *service.OverviewService
	countryService *service.CountryService
	tariffService  *service.TariffService
	tariffRouter   *router.TariffRouter
}

// Options carries the optional collaborators of a Manager.
type Options struct {
	Locker     lock.KeyLocker    // defaults to an in-process locker
	Archive    provider.Archiver // nil disables payload archiving
	HTTPClient *http.Client      // overrides the provider timeout when set
}

// NewManager wires the tariff module. Providers whose base URL is empty are left unconfigured.
func NewManager(cfg *config.Config, db *gorm.DB, opts Options) *Manager {
	locker := opts.Locker
	if locker == nil {
		locker = lock.NewLocalLocker()
	}

	// Initialize stores
	countryStore := store.NewCountryStore(db)
	itemStore := store.NewItemStore(db)
	tariffStore := store.NewTariffStore(db)

	sentinels := service.NewSentinelService(countryStore, cfg.Tariff.WorldCountryName, cfg.Tariff.DevelopingCountryName)
	normalizer := normalize.NewNormalizer(normalize.InflectionSingularizer, cfg.Tariff.CustomsDifferentiated)

	// Initialize providers
	var (
		current    service.CurrentRateProvider
		historical service.HistoricalRateProvider
		codes      service.ItemCodeProvider
	)
	if cfg.Providers.CurrentRateBaseURL != "" {
		client := provider.NewClient(CurrentRateProviderName, provider.Options{
			BaseURL:       cfg.Providers.CurrentRateBaseURL,
			Token:         cfg.Providers.CurrentRateAPIToken,
			Timeout:       cfg.Providers.Timeout(),
			RatePerSecond: cfg.Providers.RatePerSecond,
			Burst:         cfg.Providers.Burst,
			HTTPClient:    opts.HTTPClient,
			Archive:       opts.Archive,
		})
		current = provider.NewCurrentRateAdapter(client, countryStore, sentinels)
		codes = provider.NewItemCodeAdapter(client)
	} else {
		slog.Warn("current-rate provider not configured, cache misses will not be fetched")
	}
	if cfg.Providers.HistoricalRateBaseURL != "" {
		client := provider.NewClient(HistoricalRateProviderName, provider.Options{
			BaseURL:       cfg.Providers.HistoricalRateBaseURL,
			Timeout:       cfg.Providers.Timeout(),
			RatePerSecond: cfg.Providers.RatePerSecond,
			Burst:         cfg.Providers.Burst,
			HTTPClient:    opts.HTTPClient,
			Archive:       opts.Archive,
		})
		historical = provider.NewHistoricalRateAdapter(client)
	} else {
		slog.Warn("historical-rate provider not configured, overviews are served from cache only")
	}

	// Initialize services
	items := service.NewItemResolver(normalizer, itemStore, codes)
	m := &Manager{
		db:             db,
		csvPath:        cfg.Tariff.CountriesCSVPath,
		sentinels:      sentinels,
		loader:         bootstrap.NewLoader(countryStore, cfg.Tariff.WorldCountryName, cfg.Tariff.DevelopingCountryName),
		engine:         service.NewResolutionEngine(countryStore, tariffStore, items, current, sentinels, locker),
		overview:       service.NewOverviewService(countryStore, tariffStore, items, historical, locker),
		countryService: service.NewCountryService(countryStore),
		tariffService:  service.NewTariffService(tariffStore),
	}

	// Initialize router
	m.tariffRouter = router.NewTariffRouter(m.engine, m.overview, m.countryService, m.tariffService)
	return m
}

// Bootstrap seeds the country table on first start and resolves the sentinel countries.
func (m *Manager) Bootstrap(ctx context.Context) (bootstrap.Result, error) {
	src, err := bootstrap.OpenSource(m.csvPath)
	if err != nil {
		return bootstrap.Result{}, err
	}
	defer src.Close()

	res, err := m.loader.Run(ctx, src)
	if err != nil {
		return res, err
	}
	return res, m.sentinels.Preload(ctx)
}

// ResolveCurrent resolves the applicable current rate for a query
func (m *Manager) ResolveCurrent(ctx context.Context, query model.CurrentTariffQueryDTO) (*model.CurrentTariffResponseDTO, error) {
	return m.engine.ResolveCurrent(ctx, query)
}

// GetOverview assembles the historical series for a query
func (m *Manager) GetOverview(ctx context.Context, query model.TariffOverviewQueryDTO) (*model.TariffOverviewResponseDTO, error) {
	return m.overview.GetOverview(ctx, query)
}

// ListCountries retrieves a page of countries
func (m *Manager) ListCountries(ctx context.Context, filter model.CountryFilter) (*model.CountryListResult, error) {
	return m.countryService.ListCountries(ctx, filter)
}

// HandleGetCountries handles GET /api/tariff/countries
func (m *Manager) HandleGetCountries(w http.ResponseWriter, r *http.Request) {
	m.tariffRouter.HandleGetCountries(w, r)
}

// HandleResolveCurrent handles POST /api/tariff/current
func (m *Manager) HandleResolveCurrent(w http.ResponseWriter, r *http.Request) {
	m.tariffRouter.HandleResolveCurrent(w, r)
}

// HandleGetOverview handles POST /api/tariff/past
func (m *Manager) HandleGetOverview(w http.ResponseWriter, r *http.Request) {
	m.tariffRouter.HandleGetOverview(w, r)
}

// HandleGetTariff handles GET /api/tariff/tariffs/{tariffId}
func (m *Manager) HandleGetTariff(w http.ResponseWriter, r *http.Request) {
	m.tariffRouter.HandleGetTariff(w, r)
}

// HandleHealth handles GET /health
func (m *Manager) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := database.HealthCheck(m.db); err != nil {
		slog.ErrorContext(r.Context(), "health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// RegisterRoutes mounts the tariff endpoints on mux
func (m *Manager) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", m.HandleHealth)
	mux.HandleFunc("GET /api/tariff/countries", m.HandleGetCountries)
	mux.HandleFunc("POST /api/tariff/current", m.HandleResolveCurrent)
	mux.HandleFunc("POST /api/tariff/past", m.HandleGetOverview)
	mux.HandleFunc("GET /api/tariff/tariffs/{tariffId}", m.HandleGetTariff)
}
