package app

import (
	"github.com/stacklok/country-cache-server/internal/service"
	"github.com/stacklok/country-cache-server/internal/summary"
	"github.com/stacklok/country-cache-server/internal/sync/coordinator"
	"github.com/stacklok/country-cache-server/internal/sync/state"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Coordinator accepts refresh triggers and runs them in the background
	Coordinator coordinator.Coordinator

	// CountryService serves cached countries
	CountryService service.CountryService

	// StateService tracks refresh runs
	StateService state.RefreshStateService

	// Summary renders and serves the summary image
	Summary *summary.Publisher
}
