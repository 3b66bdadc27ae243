package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/enzy247/allocd/internal/planner"
	"github.com/enzy247/allocd/internal/recommender"
	"github.com/enzy247/allocd/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	embedded, err := store.StartEmbedded(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(embedded.Shutdown)

	nc, err := nats.Connect(embedded.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	st, err := store.New(nc, &store.Config{BucketPrefix: "allocd_http_test"}, nil)
	require.NoError(t, err)

	rec := recommender.NewService(nil, nil)

	s, err := NewServer(st, rec, zap.NewNop(), nil)
	require.NoError(t, err)
	return s
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	s.echo.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rr := doRequest(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp HealthResponse
	decode(t, rr, &resp)
	assert.Equal(t, "ok", resp.Status)
}

func TestResourceValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"type":"developer","available_hours":10}`, "name is required"},
		{"missing type", `{"name":"Dana","available_hours":10}`, "type is required"},
		{"zero hours", `{"name":"Dana","type":"developer","available_hours":0}`, "available_hours"},
		{"negative hours", `{"name":"Dana","type":"developer","available_hours":-5}`, "available_hours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, s, http.MethodPost, "/api/v1/resources", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.want)
		})
	}
}

func TestResourceLifecycle(t *testing.T) {
	s := newTestServer(t)

	rr := doRequest(t, s, http.MethodPost, "/api/v1/resources",
		`{"name":"Dana","type":"developer","available_hours":160}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created planner.Resource
	decode(t, rr, &created)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Dana", created.Name)

	rr = doRequest(t, s, http.MethodPut, fmt.Sprintf("/api/v1/resources/%d", created.ID),
		`{"name":"Dana","type":"developer","available_hours":120}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, s, http.MethodGet, "/api/v1/resources", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []planner.Resource
	decode(t, rr, &list)
	require.Len(t, list, 1)
	assert.InDelta(t, 120.0, list[0].AvailableHours, 1e-9)

	rr = doRequest(t, s, http.MethodDelete, fmt.Sprintf("/api/v1/resources/%d", created.ID), "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/v1/resources/%d", created.ID), "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTaskValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing title", `{"required_hours":10,"priority":1}`, "title is required"},
		{"zero hours", `{"title":"Test","required_hours":0,"priority":1}`, "required_hours"},
		{"priority too low", `{"title":"Test","required_hours":10,"priority":0}`, "priority"},
		{"priority too high", `{"title":"Test","required_hours":10,"priority":6}`, "priority"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, s, http.MethodPost, "/api/v1/tasks", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.want)
		})
	}
}

func TestGenerateAlternatives_RequiresData(t *testing.T) {
	s := newTestServer(t)

	rr := doRequest(t, s, http.MethodGet, "/api/v1/alternatives", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "no resources")

	rr = doRequest(t, s, http.MethodPost, "/api/v1/resources",
		`{"name":"Dana","type":"developer","available_hours":160}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doRequest(t, s, http.MethodGet, "/api/v1/alternatives", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "no tasks")
}

func TestGenerateAlternatives_FullFlow(t *testing.T) {
	s := newTestServer(t)

	rr := doRequest(t, s, http.MethodPost, "/api/v1/demo", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var seeded DemoDataResponse
	decode(t, rr, &seeded)
	assert.Equal(t, 5, seeded.ResourcesAdded)
	assert.Equal(t, 5, seeded.TasksAdded)

	rr = doRequest(t, s, http.MethodGet, "/api/v1/alternatives", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp AlternativesResponse
	decode(t, rr, &resp)
	require.NotEmpty(t, resp.Alternatives)
	assert.Equal(t, len(resp.Alternatives), resp.Total)
	assert.Empty(t, resp.Recommendations, "untrained model must not recommend")

	for i := 1; i < len(resp.Alternatives); i++ {
		assert.GreaterOrEqual(t, resp.Alternatives[i-1].Score, resp.Alternatives[i].Score,
			"alternatives must be sorted by score, best first")
	}
	for _, alt := range resp.Alternatives {
		assert.Equal(t, resp.Alternatives[0].RunID, alt.RunID)
		require.NotEmpty(t, alt.Allocations)
		for _, a := range alt.Allocations {
			assert.NotEmpty(t, a.ResourceName)
			assert.NotEmpty(t, a.TaskTitle)
			assert.Greater(t, a.Hours, 0.0)
		}
	}

	// A second run replaces the first.
	firstIDs := make(map[int64]bool)
	for _, alt := range resp.Alternatives {
		firstIDs[alt.ID] = true
	}
	rr = doRequest(t, s, http.MethodGet, "/api/v1/alternatives", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var second AlternativesResponse
	decode(t, rr, &second)
	for _, alt := range second.Alternatives {
		assert.False(t, firstIDs[alt.ID], "old alternative IDs must not survive regeneration")
	}
}

func TestGetAlternative_NotFound(t *testing.T) {
	s := newTestServer(t)
	rr := doRequest(t, s, http.MethodGet, "/api/v1/alternatives/42", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSelectAlternative(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusOK, doRequest(t, s, http.MethodPost, "/api/v1/demo", "").Code)
	rr := doRequest(t, s, http.MethodGet, "/api/v1/alternatives", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var alts AlternativesResponse
	decode(t, rr, &alts)
	require.NotEmpty(t, alts.Alternatives)

	target := alts.Alternatives[0]
	rr = doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/v1/alternatives/%d/select", target.ID), "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp SelectResponse
	decode(t, rr, &resp)
	assert.Equal(t, target.ID, resp.AlternativeID)
	assert.Equal(t, int64(1), resp.Choice.ID)
	assert.Equal(t, 5, resp.Choice.NumResources)
	assert.Equal(t, 5, resp.Choice.NumTasks)
	assert.Greater(t, resp.Choice.Coverage, 0.0)
	assert.InDelta(t, target.Score, resp.Choice.TotalScore, 1e-9)
	assert.Nil(t, resp.MLPrediction, "untrained model must not predict")

	rr = doRequest(t, s, http.MethodPost, "/api/v1/alternatives/9999/select", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStats(t *testing.T) {
	s := newTestServer(t)

	// Without alternatives the stats still report totals.
	rr := doRequest(t, s, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var empty planner.Stats
	decode(t, rr, &empty)
	assert.Contains(t, empty.Warnings, "no alternatives to analyze")

	require.Equal(t, http.StatusOK, doRequest(t, s, http.MethodPost, "/api/v1/demo", "").Code)
	rr = doRequest(t, s, http.MethodGet, "/api/v1/alternatives", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var alts AlternativesResponse
	decode(t, rr, &alts)
	require.NotEmpty(t, alts.Alternatives)

	rr = doRequest(t, s, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var stats planner.Stats
	decode(t, rr, &stats)
	assert.Equal(t, 5, stats.TotalResources)
	assert.Equal(t, 5, stats.TotalTasks)
	assert.Greater(t, stats.TotalAllocatedHours, 0.0)
	assert.Len(t, stats.ResourceStats, 5)
	assert.Len(t, stats.TaskStats, 5)

	rr = doRequest(t, s, http.MethodGet,
		fmt.Sprintf("/api/v1/stats?alternative_id=%d", alts.Alternatives[0].ID), "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, s, http.MethodGet, "/api/v1/stats?alternative_id=9999", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestExportAlternatives(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusOK, doRequest(t, s, http.MethodPost, "/api/v1/demo", "").Code)
	require.Equal(t, http.StatusOK, doRequest(t, s, http.MethodGet, "/api/v1/alternatives", "").Code)

	rr := doRequest(t, s, http.MethodGet, "/api/v1/export/alternatives", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp AlternativesResponse
	decode(t, rr, &resp)
	assert.NotEmpty(t, resp.Alternatives)

	rr = doRequest(t, s, http.MethodGet, "/api/v1/export/alternatives?format=csv", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "alternatives.csv")
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "alternative_id,score,explanation,resource,task,hours", strings.TrimSpace(lines[0]))
	assert.Greater(t, len(lines), 1, "csv must contain allocation rows")

	rr = doRequest(t, s, http.MethodGet, "/api/v1/export/alternatives?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTrainModel_InsufficientData(t *testing.T) {
	s := newTestServer(t)

	rr := doRequest(t, s, http.MethodPost, "/api/v1/ml/train", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp TrainResponse
	decode(t, rr, &resp)
	assert.Equal(t, recommender.StatusInsufficientData, resp.Status)
	assert.Equal(t, 0, resp.ChoicesUsed)
}

func TestModelInfo_Untrained(t *testing.T) {
	s := newTestServer(t)

	rr := doRequest(t, s, http.MethodGet, "/api/v1/ml/info", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var info recommender.ModelInfo
	decode(t, rr, &info)
	assert.False(t, info.Trained)
	assert.Len(t, info.Features, recommender.FeatureCount)
}

func TestClearData(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusOK, doRequest(t, s, http.MethodPost, "/api/v1/demo", "").Code)
	require.Equal(t, http.StatusOK, doRequest(t, s, http.MethodGet, "/api/v1/alternatives", "").Code)

	rr := doRequest(t, s, http.MethodPost, "/api/v1/clear", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp ClearResponse
	decode(t, rr, &resp)
	assert.Equal(t, 5, resp.Deleted["resources"])
	assert.Equal(t, 5, resp.Deleted["tasks"])
	assert.Greater(t, resp.Deleted["alternatives"], 0)

	rr = doRequest(t, s, http.MethodGet, "/api/v1/resources", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []planner.Resource
	decode(t, rr, &list)
	assert.Empty(t, list)
}
