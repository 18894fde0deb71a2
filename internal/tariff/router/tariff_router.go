package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/OpenNSW/tariff/internal/tariff/model"
)

// CurrentResolver resolves current-rate queries.
type CurrentResolver interface {
	ResolveCurrent(ctx context.Context, query model.CurrentTariffQueryDTO) (*model.CurrentTariffResponseDTO, error)
}

// OverviewAssembler builds historical series.
type OverviewAssembler interface {
	GetOverview(ctx context.Context, query model.TariffOverviewQueryDTO) (*model.TariffOverviewResponseDTO, error)
}

// CountryLister pages through stored countries.
type CountryLister interface {
	ListCountries(ctx context.Context, filter model.CountryFilter) (*model.CountryListResult, error)
}

// TariffGetter reads a persisted tariff by id.
type TariffGetter interface {
	GetTariff(ctx context.Context, id uint) (*model.TariffDetailDTO, error)
}

type TariffRouter struct {
	current   CurrentResolver
	overview  OverviewAssembler
	countries CountryLister
	tariffs   TariffGetter
}

func NewTariffRouter(current CurrentResolver, overview OverviewAssembler, countries CountryLister, tariffs TariffGetter) *TariffRouter {
	return &TariffRouter{
		current:   current,
		overview:  overview,
		countries: countries,
		tariffs:   tariffs,
	}
}

// HandleGetCountries handles GET /api/tariff/countries
// Optional Query Filters: offset, limit
func (tr *TariffRouter) HandleGetCountries(w http.ResponseWriter, r *http.Request) {
	var filter model.CountryFilter

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'limit' query parameter, must be an integer")
			return
		}
		filter.Limit = &limit
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'offset' query parameter, must be an integer")
			return
		}
		filter.Offset = &offset
	}

	result, err := tr.countries.ListCountries(r.Context(), filter)
	if err != nil {
		writeServiceError(r.Context(), w, "failed to list countries", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleResolveCurrent handles POST /api/tariff/current
// Request body: CurrentTariffQueryDTO
// Response: CurrentTariffResponseDTO
func (tr *TariffRouter) HandleResolveCurrent(w http.ResponseWriter, r *http.Request) {
	var req model.CurrentTariffQueryDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ReportingCountry == "" || req.PartnerCountry == "" || req.Item == "" {
		writeError(w, http.StatusBadRequest, "reportingCountry, partnerCountry and item are required")
		return
	}

	resp, err := tr.current.ResolveCurrent(r.Context(), req)
	if err != nil {
		writeServiceError(r.Context(), w, "failed to resolve tariff", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetOverview handles POST /api/tariff/past
// Request body: TariffOverviewQueryDTO
// Response: TariffOverviewResponseDTO
func (tr *TariffRouter) HandleGetOverview(w http.ResponseWriter, r *http.Request) {
	var req model.TariffOverviewQueryDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ReportingCountry == "" || req.PartnerCountry == "" || req.Item == "" {
		writeError(w, http.StatusBadRequest, "reportingCountry, partnerCountry and item are required")
		return
	}

	resp, err := tr.overview.GetOverview(r.Context(), req)
	if err != nil {
		writeServiceError(r.Context(), w, "failed to assemble tariff overview", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetTariff handles GET /api/tariff/tariffs/{tariffId}
func (tr *TariffRouter) HandleGetTariff(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("tariffId")
	if idStr == "" {
		writeError(w, http.StatusBadRequest, "missing tariffId in path")
		return
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tariffId: "+idStr)
		return
	}

	detail, err := tr.tariffs.GetTariff(r.Context(), uint(id))
	if err != nil {
		writeServiceError(r.Context(), w, "failed to get tariff", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// StatusFor maps a service error onto an HTTP status. Upstream failures surface as not found.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrUpstreamFailure):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(ctx, msg, "error", err)
	} else {
		slog.InfoContext(ctx, msg, "status", status, "error", err)
	}
	writeError(w, status, msg+": "+err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
