package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chartviz/engine/internal/api/handlers"
	"github.com/chartviz/engine/internal/api/types"
	"github.com/chartviz/engine/internal/chat"
	"github.com/chartviz/engine/internal/client"
	"github.com/chartviz/engine/internal/models"
	"github.com/chartviz/engine/internal/repository"
	"github.com/chartviz/engine/internal/services"
	"github.com/chartviz/engine/internal/square"
	"github.com/chartviz/engine/pkg/database"
	"github.com/chartviz/engine/pkg/logger"
)

const orchard = `{"name":"Root","children":[
  {"name":"Branch 1","children":[{"name":"Leaf A"},{"name":"Leaf B"}]},
  {"name":"Branch 2","children":[{"name":"Leaf C"}]}
]}`

func TestMain(m *testing.M) {
	logger.Use(zap.NewNop())
	os.Exit(m.Run())
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(context.Background(), database.Options{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:api_%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	chartRepo := repository.NewChartRepository(db)
	custRepo := repository.NewCustomizationRepository(db)
	defaults := services.RenderDefaults{Width: 800, Height: 800, Theme: "light"}

	auth := services.NewAuthService(repository.NewUserRepository(db), []byte("router-test"))
	charts := services.NewChartService(chartRepo, custRepo, defaults)
	custs := services.NewCustomizationService(charts, custRepo, repository.NewDetailingRepository(db))
	snaps := services.NewSnapshotService(charts, chartRepo, custRepo, repository.NewSnapshotRepository(db), nil, defaults)
	hub := chat.NewHub(nil)

	srv := httptest.NewServer(NewRouter(Dependencies{
		Tokens:                auth,
		Registry:              prometheus.NewRegistry(),
		AuthHandler:           handlers.NewAuthHandler(auth),
		ChartsHandler:         handlers.NewChartsHandler(charts),
		CustomizationsHandler: handlers.NewCustomizationsHandler(custs),
		SnapshotsHandler:      handlers.NewSnapshotsHandler(snaps),
		ChatHandler:           handlers.NewChatHandler(hub, charts),
	}))
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
		_ = database.Close(db)
	})
	return srv
}

func call(t *testing.T, method, url, token string, body any) (*http.Response, types.APIResponse) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out types.APIResponse
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func login(t *testing.T, base, email string) string {
	t.Helper()
	resp, _ := call(t, http.MethodPost, base+"/api/v1/auth/register", "", types.RegisterRequest{Email: email, Password: "long enough", Name: "Gardener"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, out := call(t, http.MethodPost, base+"/api/v1/auth/login", "", types.LoginRequest{Email: email, Password: "long enough"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := out.Data.(map[string]any)
	return data["access_token"].(string)
}

func createChart(t *testing.T, base, token string) uint64 {
	t.Helper()
	resp, out := call(t, http.MethodPost, base+"/api/v1/charts", token, map[string]any{
		"title": "orchard",
		"data":  json.RawMessage(orchard),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return uint64(out.Data.(map[string]any)["id"].(float64))
}

func TestAuthRequired(t *testing.T) {
	srv := newServer(t)

	resp, out := call(t, http.MethodGet, srv.URL+"/api/v1/charts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", out.Error.Code)

	resp, out = call(t, http.MethodPost, srv.URL+"/api/v1/auth/register", "", types.RegisterRequest{Email: "not-an-email", Password: "short"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, out.Error.Message, "email")
}

func TestChartLifecycle(t *testing.T) {
	srv := newServer(t)
	owner := login(t, srv.URL, "owner@example.com")
	other := login(t, srv.URL, "other@example.com")
	id := createChart(t, srv.URL, owner)
	chartURL := fmt.Sprintf("%s/api/v1/charts/%d", srv.URL, id)

	resp, _ := call(t, http.MethodGet, chartURL, other, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, out := call(t, http.MethodGet, srv.URL+"/api/v1/charts?page=1&page_size=10", owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), out.Meta.Total)

	resp, out = call(t, http.MethodPost, srv.URL+"/api/v1/charts", owner, map[string]any{"title": "bad", "data": json.RawMessage(`{"name":"x"}`), "theme": "neon"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, out.Error.Message, "theme")

	resp, out = call(t, http.MethodGet, chartURL+"/squares/3", owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sq := out.Data.(map[string]any)
	assert.Equal(t, "/square-form?depth=2&parentText=Branch+1&squareClass=leaf", sq["detailingsLink"])

	resp, out = call(t, http.MethodPut, chartURL+"/squares/3", owner, map[string]any{"title": "Leaf Beta", "urgency": "yellow"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Leaf Beta", out.Data.(map[string]any)["data"].(map[string]any)["title"])

	resp, _ = call(t, http.MethodPut, chartURL+"/squares/3", other, map[string]any{"title": "mine now"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, out = call(t, http.MethodGet, chartURL+"/hit?x=400&y=400", owner, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Root", out.Data.(map[string]any)["data"].(map[string]any)["title"])

	resp, _ = call(t, http.MethodDelete, chartURL, owner, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = call(t, http.MethodGet, chartURL, owner, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRenderETag(t *testing.T) {
	srv := newServer(t)
	token := login(t, srv.URL, "render@example.com")
	id := createChart(t, srv.URL, token)
	url := fmt.Sprintf("%s/api/v1/charts/%d/render?mode=included-build&exclude=1,2", srv.URL, id)

	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	req, _ = http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("If-None-Match", etag)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)

	resp, out := call(t, http.MethodGet, fmt.Sprintf("%s/api/v1/charts/%d/scene?mode=scoped", srv.URL, id), token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid", out.Error.Code)

	resp, out = call(t, http.MethodGet, fmt.Sprintf("%s/api/v1/charts/%d/scene?mode=scoped&class=branch", srv.URL, id), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, out.Data.(map[string]any)["squares"], 2)
}

func TestCustomizationClientRoundTrip(t *testing.T) {
	srv := newServer(t)
	token := login(t, srv.URL, "editor@example.com")
	id := createChart(t, srv.URL, token)
	c := client.New(srv.URL, client.WithToken(token))
	ctx := context.Background()

	key := square.Key{SquareClass: square.ClassLeaf, ParentText: "Branch 1", Depth: 2}
	saved, err := c.Save(ctx, client.NewCustomization(id, key, square.SquareData{Title: "Ripe", Urgency: square.UrgencyRed}))
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	_, err = c.Save(ctx, client.NewCustomization(id, key, square.SquareData{Title: "Riper", Urgency: square.UrgencyOrange}))
	require.NoError(t, err)

	all, err := c.FetchAll(ctx, id)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Riper", all[1].Title)
	assert.Equal(t, key, all[1].Key())

	_, err = c.Save(ctx, client.NewCustomization(id, square.Key{SquareClass: "trunk", Depth: 1}, square.SquareData{}))
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	_, err = c.SaveDetailing(ctx, client.Detailing{ChartID: id, SquareClass: square.ClassLeaf, ParentText: "Branch 1", Depth: 2, Purpose: "harvest"})
	require.NoError(t, err)
	details, err := c.FetchDetailings(ctx, id)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "harvest", details[0].Purpose)

	resp, out := call(t, http.MethodGet, fmt.Sprintf("%s/api/v1/charts/%d/scene?customized=true", srv.URL, id), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	labels := map[string]int{}
	for _, s := range out.Data.(map[string]any)["squares"].([]any) {
		labels[s.(map[string]any)["label"].(string)]++
	}
	assert.Zero(t, labels["Riper"])
	assert.Equal(t, 1, labels["Leaf A"])
	assert.Equal(t, 1, labels["Leaf B"])

	unauth := client.New(srv.URL)
	_, err = unauth.FetchAll(ctx, id)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestSquareForm(t *testing.T) {
	srv := newServer(t)

	resp, out := call(t, http.MethodGet, srv.URL+"/square-form?depth=2&parentText=Branch+1&squareClass=leaf", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"squareClass": "leaf", "parentText": "Branch 1", "depth": float64(2)}, out.Data)

	resp, out = call(t, http.MethodGet, srv.URL+"/square-form?squareClass=leaf", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missing_context", out.Error.Code)
}

func TestSnapshotsWithoutQueue(t *testing.T) {
	srv := newServer(t)
	token := login(t, srv.URL, "snap@example.com")
	id := createChart(t, srv.URL, token)

	resp, out := call(t, http.MethodPost, fmt.Sprintf("%s/api/v1/charts/%d/snapshots", srv.URL, id), token, types.SnapshotCreateRequest{Mode: "treemap"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, out.Data.(map[string]any)["queued"])

	resp, _ = call(t, http.MethodGet, fmt.Sprintf("%s/api/v1/charts/%d/snapshots/current", srv.URL, id), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t)
	call(t, http.MethodGet, srv.URL+"/healthz", "", nil)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	assert.Contains(t, buf.String(), `chartviz_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}
