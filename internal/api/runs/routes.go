// Package runs serves the cache status and the refresh run history.
package runs

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stacklok/country-cache-server/internal/api/common"
	"github.com/stacklok/country-cache-server/internal/status"
	"github.com/stacklok/country-cache-server/internal/sync/state"
)

// CountryCounter reports the number of cached countries
type CountryCounter interface {
	CountCountries(ctx context.Context) (int64, error)
}

// StatusResponse summarizes the cache
type StatusResponse struct {
	TotalCountries  int64      `json:"total_countries"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at"`
}

// Routes holds the dependencies of the status handlers
type Routes struct {
	counter  CountryCounter
	stateSvc state.RefreshStateService
}

// Router creates the router mounted at /status
func Router(counter CountryCounter, stateSvc state.RefreshStateService) http.Handler {
	routes := &Routes{counter: counter, stateSvc: stateSvc}

	r := chi.NewRouter()
	r.Get("/", routes.getStatus)
	r.Get("/runs", routes.listRuns)
	r.Get("/runs/{id}", routes.getRun)

	return r
}

func (rr *Routes) getStatus(w http.ResponseWriter, r *http.Request) {
	total, err := rr.counter.CountCountries(r.Context())
	if err != nil {
		common.WriteInternalError(w, r, "Failed to count countries", err)
		return
	}

	last, err := rr.stateSvc.LastRefreshedAt(r.Context())
	if err != nil {
		common.WriteInternalError(w, r, "Failed to read last refresh time", err)
		return
	}
	if last != nil {
		utc := last.UTC()
		last = &utc
	}

	common.WriteJSONResponse(w, StatusResponse{
		TotalCountries:  total,
		LastRefreshedAt: last,
	}, http.StatusOK)
}

func (rr *Routes) listRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := common.GetIntQuery(r, "limit", state.DefaultListLimit)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := rr.stateSvc.ListRuns(r.Context(), state.NormalizeLimit(limit))
	if err != nil {
		common.WriteInternalError(w, r, "Failed to list refresh runs", err)
		return
	}
	if list == nil {
		list = []*status.RefreshStatus{}
	}

	common.WriteJSONResponse(w, list, http.StatusOK)
}

func (rr *Routes) getRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteErrorResponse(w, "Invalid run id", http.StatusBadRequest)
		return
	}

	run, err := rr.stateSvc.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, state.ErrRunNotFound) {
			common.WriteErrorResponse(w, "Refresh run not found", http.StatusNotFound)
			return
		}
		common.WriteInternalError(w, r, "Failed to get refresh run", err)
		return
	}

	common.WriteJSONResponse(w, run, http.StatusOK)
}
