// Package countries serves the cached country collection, the refresh trigger
// and the summary image.
package countries

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stacklok/country-cache-server/internal/api/common"
	"github.com/stacklok/country-cache-server/internal/service"
	"github.com/stacklok/country-cache-server/internal/summary"
	"github.com/stacklok/country-cache-server/internal/sync/coordinator"
)

// ImageReader returns the bytes of the last rendered summary image
type ImageReader interface {
	Read() ([]byte, error)
}

// RefreshResponse is returned when a refresh is accepted
type RefreshResponse struct {
	Message   string    `json:"message"`
	RunID     uuid.UUID `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
}

// InProgressDetails identifies the run that blocked a refresh
type InProgressDetails struct {
	RunID *uuid.UUID `json:"run_id"`
}

// Routes holds the dependencies of the country handlers
type Routes struct {
	service     service.CountryService
	coordinator coordinator.Coordinator
	images      ImageReader
}

// NewRoutes creates a new Routes instance
func NewRoutes(svc service.CountryService, coord coordinator.Coordinator, images ImageReader) *Routes {
	return &Routes{
		service:     svc,
		coordinator: coord,
		images:      images,
	}
}

// Router creates the router mounted at /countries
func Router(svc service.CountryService, coord coordinator.Coordinator, images ImageReader) http.Handler {
	routes := NewRoutes(svc, coord, images)

	r := chi.NewRouter()
	r.Post("/refresh", routes.refresh)
	r.Get("/", routes.listCountries)
	r.Get("/image", routes.getImage)
	r.Get("/{name}", routes.getCountry)
	r.Delete("/{name}", routes.deleteCountry)

	return r
}

func (rr *Routes) refresh(w http.ResponseWriter, r *http.Request) {
	run, err := rr.coordinator.Trigger(r.Context())
	if err != nil {
		var inProgress *coordinator.InProgressError
		switch {
		case errors.As(err, &inProgress):
			details := InProgressDetails{}
			if inProgress.RunID != uuid.Nil {
				details.RunID = &inProgress.RunID
			}
			common.WriteErrorWithDetails(w, "Refresh already in progress", details, http.StatusConflict)
		case errors.Is(err, coordinator.ErrQueueFull):
			common.WriteErrorResponse(w, "Refresh queue is full", http.StatusServiceUnavailable)
		default:
			common.WriteInternalError(w, r, "Failed to trigger refresh", err)
		}
		return
	}

	slog.InfoContext(r.Context(), "Refresh accepted", "run_id", run.ID)
	common.WriteJSONResponse(w, RefreshResponse{
		Message:   "Refresh started",
		RunID:     run.ID,
		StartedAt: run.StartedAt.UTC(),
	}, http.StatusAccepted)
}

func (rr *Routes) listCountries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var opts []service.Option[service.ListCountriesOptions]
	if region := strings.TrimSpace(query.Get("region")); region != "" {
		opts = append(opts, service.WithRegion(region))
	}
	if currency := strings.TrimSpace(query.Get("currency")); currency != "" {
		opts = append(opts, service.WithCurrency(currency))
	}
	if sort := strings.TrimSpace(query.Get("sort")); sort != "" {
		if _, err := service.ParseSortOrder(sort); err != nil {
			common.WriteErrorResponse(w, fmt.Sprintf("Invalid sort parameter %s", strconv.Quote(sort)), http.StatusBadRequest)
			return
		}
		opts = append(opts, service.WithSort(sort))
	}

	countries, err := rr.service.ListCountries(r.Context(), opts...)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSort) {
			common.WriteErrorResponse(w, "Invalid sort parameter", http.StatusBadRequest)
			return
		}
		common.WriteInternalError(w, r, "Failed to list countries", err)
		return
	}
	if countries == nil {
		countries = []*service.Country{}
	}

	common.WriteJSONResponse(w, countries, http.StatusOK)
}

func (rr *Routes) getImage(w http.ResponseWriter, r *http.Request) {
	data, err := rr.images.Read()
	if err != nil {
		if errors.Is(err, summary.ErrImageNotFound) {
			common.WriteErrorResponse(w, "Summary image not found", http.StatusNotFound)
			return
		}
		common.WriteInternalError(w, r, "Failed to read summary image", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rr *Routes) getCountry(w http.ResponseWriter, r *http.Request) {
	name, err := common.GetURLParam(r, "name")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	country, err := rr.service.GetCountry(r.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrCountryNotFound) {
			common.WriteErrorResponse(w, "Country not found", http.StatusNotFound)
			return
		}
		common.WriteInternalError(w, r, "Failed to get country", err)
		return
	}

	common.WriteJSONResponse(w, country, http.StatusOK)
}

func (rr *Routes) deleteCountry(w http.ResponseWriter, r *http.Request) {
	name, err := common.GetURLParam(r, "name")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	deleted, err := rr.service.DeleteCountry(r.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrCountryNotFound) {
			common.WriteErrorResponse(w, "Country not found", http.StatusNotFound)
			return
		}
		common.WriteInternalError(w, r, "Failed to delete country", err)
		return
	}

	slog.InfoContext(r.Context(), "Country deleted", "name", deleted.Name)
	common.WriteJSONResponse(w, common.MessageResponse{
		Message: fmt.Sprintf("Country %q deleted successfully", deleted.Name),
	}, http.StatusOK)
}
