package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/chartviz/engine/internal/square"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI mimics the append-only persistence endpoints.
type fakeAPI struct {
	mu    sync.Mutex
	rows  []Customization
	auths []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auths = append(f.auths, r.Header.Get("Authorization"))

	write := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == CustomizationPath:
		var c Customization
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.ChartID == 0 {
			write(http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   map[string]string{"code": "invalid", "message": "chartId is required"},
			})
			return
		}
		c.ID = uint64(len(f.rows) + 1)
		f.rows = append(f.rows, c)
		write(http.StatusCreated, map[string]any{"success": true, "data": c})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, CustomizationPath+"/"):
		id, _ := strconv.ParseUint(strings.TrimPrefix(r.URL.Path, CustomizationPath+"/"), 10, 64)
		out := []Customization{}
		for _, c := range f.rows {
			if c.ChartID == id {
				out = append(out, c)
			}
		}
		write(http.StatusOK, map[string]any{"success": true, "data": out})
	default:
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}
}

func leafCustomization() Customization {
	return NewCustomization(1,
		square.Key{SquareClass: square.ClassLeaf, ParentText: "Branch 1", Depth: 2},
		square.SquareData{
			Title:    "Leaf A",
			Priority: square.Priority{Density: 2, Durability: "single", Decor: "dashed"},
			Urgency:  square.UrgencyRed,
			Aesthetic: square.Aesthetic{
				Affect: square.Affect{FontFamily: "Arial", FontSize: 14},
				Effect: square.Effect{Color: "black"},
			},
		})
}

func TestSaveThenFetchAllIsAppendOnly(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c := New(srv.URL+"/", WithToken("tok"))
	ctx := context.Background()

	in := leafCustomization()
	first, err := c.Save(ctx, in)
	require.NoError(t, err)
	second, err := c.Save(ctx, in)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	rows, err := c.FetchAll(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, uint64(1), r.ChartID)
		assert.Equal(t, in.Key(), r.Key())
		assert.Equal(t, square.UrgencyRed, r.Urgency)
		assert.Equal(t, in.Data(), r.Data())
	}

	none, err := c.FetchAll(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Equal(t, []string{"Bearer tok", "Bearer tok", "Bearer tok", "Bearer tok"}, api.auths)
}

func TestSaveSurfacesEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(&fakeAPI{})
	t.Cleanup(srv.Close)

	_, err := New(srv.URL).Save(context.Background(), Customization{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "invalid", apiErr.Code)
	assert.Equal(t, "chartId is required", apiErr.Message)
}

func TestNonJSONFailure(t *testing.T) {
	srv := httptest.NewServer(&fakeAPI{})
	t.Cleanup(srv.Close)

	_, err := New(srv.URL).SaveDetailing(context.Background(), Detailing{ChartID: 1})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "bad gateway", apiErr.Message)
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(&fakeAPI{})
	url := srv.URL
	srv.Close()

	_, err := New(url).FetchAll(context.Background(), 1)
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
