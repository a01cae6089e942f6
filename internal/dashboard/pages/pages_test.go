package pages

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatlab/corpus/internal/analytics"
	"github.com/chatlab/corpus/internal/boundary"
	"github.com/chatlab/corpus/internal/corpusstore"
	"github.com/chatlab/corpus/internal/worker"
)

func newTestAPI(t *testing.T) (*boundary.API, string) {
	t.Helper()
	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	require.NoError(t, store.CreateCorpus(ctx, corpusstore.Corpus{
		ID: "c1", Name: "Friends", Platform: "line", ChatType: corpusstore.ChatTypeGroup,
	}))
	tx, err := store.BeginImportTx(ctx)
	require.NoError(t, err)
	_, err = store.UpsertMember(ctx, tx, corpusstore.Member{CorpusID: "c1", ID: 1, PlatformID: "a", AccountName: "Alice"})
	require.NoError(t, err)
	content := "hi there"
	require.NoError(t, store.InsertMessage(ctx, tx, corpusstore.Message{
		CorpusID: "c1", ID: 1, SenderID: 1, Ts: 1_700_000_000, Type: corpusstore.KindText, Content: &content,
	}))
	require.NoError(t, tx.Commit())

	pool := worker.New(1)
	return boundary.New(store, pool), "c1"
}

func TestRenderOverviewListsCorpus(t *testing.T) {
	api, corpusID := newTestAPI(t)
	html, err := RenderOverview(context.Background(), api)
	require.NoError(t, err)
	require.Contains(t, html, "Friends")
	require.Contains(t, html, corpusID)
}

func TestRenderCorpusDetailShowsActivity(t *testing.T) {
	api, corpusID := newTestAPI(t)
	html, err := RenderCorpusDetail(context.Background(), api, corpusID, analytics.TimeFilter{})
	require.NoError(t, err)
	require.Contains(t, html, "Alice")
	require.Contains(t, html, "Activity Ranking")
}

func TestRenderCorpusDetailUnknownCorpusErrors(t *testing.T) {
	api, _ := newTestAPI(t)
	_, err := RenderCorpusDetail(context.Background(), api, "nope", analytics.TimeFilter{})
	require.Error(t, err)
}

func TestRenderSchemaListsTables(t *testing.T) {
	api, _ := newTestAPI(t)
	html, err := RenderSchema(context.Background(), api)
	require.NoError(t, err)
	require.Contains(t, html, "message")
}

func TestRenderQueryShowsResult(t *testing.T) {
	api, _ := newTestAPI(t)
	result, err := api.QuerySQL(context.Background(), "SELECT content FROM message")
	require.NoError(t, err)
	html, err := RenderQuery("SELECT content FROM message", &result, nil)
	require.NoError(t, err)
	require.True(t, strings.Contains(html, "hi there"))
}

func TestRenderChartDispatchesByKind(t *testing.T) {
	api, corpusID := newTestAPI(t)
	html, err := RenderChart(context.Background(), api, corpusID, "activity", analytics.TimeFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, html)

	_, err = RenderChart(context.Background(), api, corpusID, "not-a-kind", analytics.TimeFilter{})
	require.Error(t, err)
}

func TestRenderImportFormAndStatus(t *testing.T) {
	require.Contains(t, RenderImportForm(), "Start an import")
	require.Contains(t, RenderImportStatus("job-1"), "job-1")
}
