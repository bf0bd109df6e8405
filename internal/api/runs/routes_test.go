package runs_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/country-cache-server/internal/api/runs"
	svcmocks "github.com/stacklok/country-cache-server/internal/service/mocks"
	"github.com/stacklok/country-cache-server/internal/status"
	"github.com/stacklok/country-cache-server/internal/sync/state"
	statemocks "github.com/stacklok/country-cache-server/internal/sync/state/mocks"
)

func serve(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGetStatus(t *testing.T) {
	t.Parallel()

	refreshed := time.Date(2025, 10, 22, 18, 0, 0, 0, time.FixedZone("WAT", 3600))

	tests := []struct {
		name       string
		setup      func(*svcmocks.MockCountryService, *statemocks.MockRefreshStateService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "never refreshed",
			setup: func(svc *svcmocks.MockCountryService, st *statemocks.MockRefreshStateService) {
				svc.EXPECT().CountCountries(gomock.Any()).Return(int64(0), nil)
				st.EXPECT().LastRefreshedAt(gomock.Any()).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"total_countries":0,"last_refreshed_at":null}`,
		},
		{
			name: "refreshed, reported in UTC",
			setup: func(svc *svcmocks.MockCountryService, st *statemocks.MockRefreshStateService) {
				svc.EXPECT().CountCountries(gomock.Any()).Return(int64(250), nil)
				st.EXPECT().LastRefreshedAt(gomock.Any()).Return(&refreshed, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"total_countries":250,"last_refreshed_at":"2025-10-22T17:00:00Z"}`,
		},
		{
			name: "count fails",
			setup: func(svc *svcmocks.MockCountryService, _ *statemocks.MockRefreshStateService) {
				svc.EXPECT().CountCountries(gomock.Any()).Return(int64(0), errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
		{
			name: "state fails",
			setup: func(svc *svcmocks.MockCountryService, st *statemocks.MockRefreshStateService) {
				svc.EXPECT().CountCountries(gomock.Any()).Return(int64(3), nil)
				st.EXPECT().LastRefreshedAt(gomock.Any()).Return(nil, errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			svc := svcmocks.NewMockCountryService(ctrl)
			st := statemocks.NewMockRefreshStateService(ctrl)
			tt.setup(svc, st)

			rec := serve(t, runs.Router(svc, st), "/")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantStatus int
	}{
		{name: "default limit", query: "", wantLimit: state.DefaultListLimit, wantStatus: http.StatusOK},
		{name: "explicit limit", query: "?limit=5", wantLimit: 5, wantStatus: http.StatusOK},
		{name: "clamped", query: "?limit=1000", wantLimit: state.MaxListLimit, wantStatus: http.StatusOK},
		{name: "non numeric", query: "?limit=all", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			st := statemocks.NewMockRefreshStateService(ctrl)
			if tt.wantStatus == http.StatusOK {
				st.EXPECT().ListRuns(gomock.Any(), tt.wantLimit).Return([]*status.RefreshStatus{
					{ID: uuid.New(), Phase: status.PhaseSuccess},
				}, nil)
			}

			rec := serve(t, runs.Router(svcmocks.NewMockCountryService(ctrl), st), "/runs"+tt.query)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				var got []status.RefreshStatus
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Len(t, got, 1)
			}
		})
	}
}

func TestGetRun(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	tests := []struct {
		name       string
		path       string
		setup      func(*statemocks.MockRefreshStateService)
		wantStatus int
	}{
		{
			name: "found",
			path: "/runs/" + id.String(),
			setup: func(m *statemocks.MockRefreshStateService) {
				m.EXPECT().GetRun(gomock.Any(), id).Return(&status.RefreshStatus{
					ID: id, Phase: status.PhaseFailed, Message: "Could not fetch data from Countries API",
				}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "bad id",
			path:       "/runs/not-a-uuid",
			setup:      func(*statemocks.MockRefreshStateService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown",
			path: "/runs/" + id.String(),
			setup: func(m *statemocks.MockRefreshStateService) {
				m.EXPECT().GetRun(gomock.Any(), id).Return(nil, state.ErrRunNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			st := statemocks.NewMockRefreshStateService(ctrl)
			tt.setup(st)

			rec := serve(t, runs.Router(svcmocks.NewMockCountryService(ctrl), st), tt.path)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				var got status.RefreshStatus
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, id, got.ID)
				assert.Equal(t, status.PhaseFailed, got.Phase)
			}
		})
	}
}
