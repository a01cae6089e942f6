package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatlab/corpus/internal/corpusstore"
)

func newStoreWithCorpus(t *testing.T, corpusID string) *corpusstore.Store {
	t.Helper()
	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.CreateCorpus(context.Background(), corpusstore.Corpus{
		ID: corpusID, Name: "fixture", Platform: "line", ChatType: corpusstore.ChatTypeGroup,
	}))
	return store
}

func TestSelectRequiresExistingCorpus(t *testing.T) {
	store := newStoreWithCorpus(t, "c1")
	defer store.Close()
	cat := New(store)
	ctx := context.Background()

	require.Error(t, cat.Select(ctx, "does-not-exist"))

	require.NoError(t, cat.Select(ctx, "c1"))
	active, err := cat.Active(ctx)
	require.NoError(t, err)
	require.Equal(t, "c1", active)
}

func TestDeleteClearsActiveSelection(t *testing.T) {
	store := newStoreWithCorpus(t, "c1")
	defer store.Close()
	cat := New(store)
	ctx := context.Background()

	require.NoError(t, cat.Select(ctx, "c1"))
	require.NoError(t, cat.Delete(ctx, "c1"))

	active, err := cat.Active(ctx)
	require.NoError(t, err)
	require.Equal(t, "", active)

	corpora, err := cat.List(ctx)
	require.NoError(t, err)
	require.Empty(t, corpora)
}

func TestStateRoundTripsAndDefaultsEmpty(t *testing.T) {
	store := newStoreWithCorpus(t, "c1")
	defer store.Close()
	cat := New(store)
	ctx := context.Background()

	st, err := cat.State(ctx, "c1")
	require.NoError(t, err)
	require.Empty(t, st.Aliases)

	start := int64(100)
	require.NoError(t, cat.SetLastTimeFilter(ctx, "c1", TimeFilter{StartTs: &start}))

	st, err = cat.State(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, st.LastTimeFilter.StartTs)
	require.Equal(t, int64(100), *st.LastTimeFilter.StartTs)
}

func TestSetOwnerUpdatesCorpus(t *testing.T) {
	store := newStoreWithCorpus(t, "c1")
	defer store.Close()
	cat := New(store)
	ctx := context.Background()

	require.NoError(t, cat.SetOwner(ctx, "c1", "alice"))
	c, err := store.GetCorpus(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "alice", c.OwnerPlatformID)
}
