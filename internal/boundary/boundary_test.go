package boundary

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatlab/corpus/internal/analytics"
	"github.com/chatlab/corpus/internal/chaterr"
	"github.com/chatlab/corpus/internal/corpusstore"
	"github.com/chatlab/corpus/internal/worker"
)

const fixtureJSONL = `{"name":"Friends","platform":"chatlab","chatType":"group"}
[{"platformId":"alice","accountName":"Alice"},{"platformId":"bob","accountName":"Bob"}]
{"sender":"alice","ts":100,"type":"text","content":"hello"}
{"sender":"bob","ts":110,"type":"text","content":"hi back"}
`

func newTestAPI(t *testing.T) *API {
	t.Helper()
	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	pool := worker.New(2)
	return New(store, pool)
}

func TestImportStartStreamsDoneEvent(t *testing.T) {
	api := newTestAPI(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "export.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(fixtureJSONL), 0o644))

	jobID, err := api.ImportStart(context.Background(), path, ImportOptions{})
	require.NoError(t, err)

	events, ok := api.Events(jobID)
	require.True(t, ok)

	var gotDone bool
	for ev := range events {
		if ev.Kind == JobEventDone {
			gotDone = true
			require.Equal(t, 2, ev.Result.MessageCount)
		}
		require.NotEqual(t, JobEventError, ev.Kind)
	}
	require.True(t, gotDone)
}

func TestQuerySQLRejectsNonSelect(t *testing.T) {
	api := newTestAPI(t)
	_, err := api.QuerySQL(context.Background(), "DELETE FROM message")
	require.Error(t, err)
	require.True(t, chaterr.Is(err, chaterr.KindParseStructural))
}

func TestQuerySQLAllowsSelect(t *testing.T) {
	api := newTestAPI(t)
	result, err := api.QuerySQL(context.Background(), "SELECT 1 AS one")
	require.NoError(t, err)
	require.Equal(t, []string{"one"}, result.Columns)
	require.Equal(t, 1, result.RowCount)
	require.False(t, result.Limited)
}

func TestQuerySQLRejectsMultipleStatements(t *testing.T) {
	api := newTestAPI(t)
	_, err := api.QuerySQL(context.Background(), "SELECT 1; DROP TABLE message")
	require.Error(t, err)
}

func TestSessionsSelectRejectsUnknownCorpus(t *testing.T) {
	api := newTestAPI(t)
	err := api.SessionsSelect(context.Background(), "nope")
	require.Error(t, err)
}

func TestMigrationsPendingEmptyOnFreshStore(t *testing.T) {
	api := newTestAPI(t)
	pending, err := api.MigrationsPending()
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestAnalyticsActivityWiresThrough(t *testing.T) {
	api := newTestAPI(t)
	ctx := context.Background()
	require.NoError(t, api.store.CreateCorpus(ctx, corpusstore.Corpus{
		ID: "c1", Name: "x", Platform: "line", ChatType: corpusstore.ChatTypeGroup,
	}))
	tx, err := api.store.BeginImportTx(ctx)
	require.NoError(t, err)
	_, err = api.store.UpsertMember(ctx, tx, corpusstore.Member{CorpusID: "c1", ID: 1, PlatformID: "a"})
	require.NoError(t, err)
	content := "hi"
	require.NoError(t, api.store.InsertMessage(ctx, tx, corpusstore.Message{
		CorpusID: "c1", ID: 1, SenderID: 1, Ts: 10, Type: corpusstore.KindText, Content: &content,
	}))
	require.NoError(t, tx.Commit())

	entries, err := api.AnalyticsActivity(ctx, "c1", analytics.TimeFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1, entries[0].MessageCount)
}
