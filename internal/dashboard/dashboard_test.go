package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/chatlab/corpus/internal/boundary"
	"github.com/chatlab/corpus/internal/corpusstore"
	"github.com/chatlab/corpus/internal/worker"
)

func newTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	require.NoError(t, store.CreateCorpus(ctx, corpusstore.Corpus{
		ID: "c1", Name: "Friends", Platform: "line", ChatType: corpusstore.ChatTypeGroup,
	}))

	pool := worker.New(1)
	api := boundary.New(store, pool)
	handler := New(api, zerolog.Nop())

	router := gin.New()
	router.Use(handler.RequestLogger())
	handler.RegisterRoutes(router)
	return router, "c1"
}

func TestHandleOverviewServesHTML(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Friends")
}

func TestHandleCorpusDetailServesHTML(t *testing.T) {
	router, corpusID := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/dashboard/corpus/"+corpusID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Activity Ranking")
}

func TestHandleCorpusDetailUnknownCorpusReturns500(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/dashboard/corpus/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleSelectRedirects(t *testing.T) {
	router, corpusID := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/dashboard/corpus/"+corpusID+"/select", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestHandleImportEventsUnknownJobReturns404(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/dashboard/import/does-not-exist/events", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
