package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/mystuff/mystuff/internal/config"
	"github.com/mystuff/mystuff/internal/test_utils"
	"github.com/mystuff/mystuff/pkg/inventory"
	"github.com/mystuff/mystuff/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T, repo store.Repository) (*mux.Router, *Dependencies) {
	t.Helper()
	deps, err := BuildDependencies(context.Background(), repo, test_utils.NewTestClock())
	require.NoError(t, err)
	t.Cleanup(func() { deps.Close() })

	r := mux.NewRouter()
	SetupMiddleware(r)
	RegisterRoutes(r, deps)
	return r, deps
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestApplication_EndToEnd(t *testing.T) {
	// given
	r, deps := setupRouter(t, store.NewRepositoryStub(nil, nil))

	// when
	w := serve(r, http.MethodPost, "/api/category", `{"name":"Electronics"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created inventory.CategoryDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))

	w = serve(r, http.MethodPost, "/api/item",
		`{"name":"Laptop","price":"1000","purchaseDate":"2024-06-05","categoryId":"`+created.ID+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// then
	w = serve(r, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	var summary inventory.SummaryDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
	assert.Equal(t, 1, summary.ItemCount)
	assert.Equal(t, 100.0, summary.TotalDailyCost)

	viewSummary, _ := deps.SummaryView.Current()
	assert.Equal(t, 1, viewSummary.ItemCount, "summary view follows the store")

	w = serve(r, http.MethodGet, "/api/item/export", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Laptop,2024-06-05,1000.00,100.00,Electronics")

	w = serve(r, http.MethodDelete, "/api/category/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, deps.Store.Items())
}

func TestBuildDependencies_FailsWhenStoreCannotLoad(t *testing.T) {
	repo := store.NewRepositoryStub(nil, nil)
	repo.FailLoad = assert.AnError

	_, err := BuildDependencies(context.Background(), repo, test_utils.NewTestClock())

	assert.ErrorIs(t, err, store.ErrStorage)
}

func TestOpenRepository_SQLite(t *testing.T) {
	// given
	cfg := config.Application{Storage: config.Storage{
		Driver: config.DriverSQLite,
		SQLite: config.SQLite{Path: filepath.Join(t.TempDir(), "data", "mystuff.db")},
	}}

	// when
	repo, err := OpenRepository(context.Background(), cfg)

	// then
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	snapshot, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot.Items)
}

func TestOpenRepository_UnknownDriver(t *testing.T) {
	_, err := OpenRepository(context.Background(), config.Application{Storage: config.Storage{Driver: "mongodb"}})

	assert.ErrorContains(t, err, `unknown storage driver "mongodb"`)
}
