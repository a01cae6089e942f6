package normalize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatlab/corpus/internal/corpusstore"
	"github.com/chatlab/corpus/internal/parser/common"
)

func ptr(s string) *string { return &s }

func newTestCorpus(t *testing.T, store *corpusstore.Store, corpusID string) {
	t.Helper()
	err := store.CreateCorpus(context.Background(), corpusstore.Corpus{
		ID: corpusID, Name: "test", Platform: "line", ChatType: corpusstore.ChatTypeGroup,
	})
	require.NoError(t, err)
}

func TestResolveSenderCreatesAndReusesMember(t *testing.T) {
	ctx := context.Background()
	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	newTestCorpus(t, store, "c1")

	tx, err := store.BeginImportTx(ctx)
	require.NoError(t, err)
	n, err := New(ctx, tx, store, "c1")
	require.NoError(t, err)

	inserted, err := n.ProcessBatch(ctx, tx, store, []common.ParsedMessage{
		{SenderPlatformID: "alice", SenderDisplayName: "Alice", Ts: 100, Type: corpusstore.KindText, Content: ptr("hi")},
		{SenderPlatformID: "alice", SenderDisplayName: "Alice", Ts: 200, Type: corpusstore.KindText, Content: ptr("again")},
	})
	require.NoError(t, err)
	require.Equal(t, 2, inserted)
	require.NoError(t, n.Finalize(ctx, tx, store))
	require.NoError(t, tx.Commit())

	members, err := store.ListMembers(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "alice", members[0].PlatformID)

	hist, err := store.NameHistoryFor(ctx, "c1", members[0].ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	require.Equal(t, "Alice", hist[0].Name)
	require.Nil(t, hist[0].EndTs)
}

func TestDisplayNameChangeClosesAndOpensInterval(t *testing.T) {
	ctx := context.Background()
	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	newTestCorpus(t, store, "c1")

	tx, err := store.BeginImportTx(ctx)
	require.NoError(t, err)
	n, err := New(ctx, tx, store, "c1")
	require.NoError(t, err)

	_, err = n.ProcessBatch(ctx, tx, store, []common.ParsedMessage{
		{SenderPlatformID: "alice", SenderDisplayName: "Alice", Ts: 100, Type: corpusstore.KindText, Content: ptr("hi")},
		{SenderPlatformID: "alice", SenderDisplayName: "Ally", Ts: 200, Type: corpusstore.KindText, Content: ptr("renamed")},
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	members, err := store.ListMembers(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, members, 1)

	hist, err := store.NameHistoryFor(ctx, "c1", members[0].ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	require.Equal(t, "Alice", hist[0].Name)
	require.NotNil(t, hist[0].EndTs)
	require.Equal(t, int64(200), *hist[0].EndTs)
	require.Equal(t, "Ally", hist[1].Name)
	require.Nil(t, hist[1].EndTs)
}

func TestDeduplicationSkipsReimportedMessage(t *testing.T) {
	ctx := context.Background()
	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	newTestCorpus(t, store, "c1")

	msg := common.ParsedMessage{SenderPlatformID: "bob", SenderDisplayName: "Bob", Ts: 50, Type: corpusstore.KindText, Content: ptr("dup me")}

	tx, err := store.BeginImportTx(ctx)
	require.NoError(t, err)
	n, err := New(ctx, tx, store, "c1")
	require.NoError(t, err)
	inserted, err := n.ProcessBatch(ctx, tx, store, []common.ParsedMessage{msg})
	require.NoError(t, err)
	require.Equal(t, 1, inserted)
	require.NoError(t, tx.Commit())

	tx2, err := store.BeginImportTx(ctx)
	require.NoError(t, err)
	n2, err := New(ctx, tx2, store, "c1")
	require.NoError(t, err)
	inserted2, err := n2.ProcessBatch(ctx, tx2, store, []common.ParsedMessage{msg})
	require.NoError(t, err)
	require.Equal(t, 0, inserted2)
	require.NoError(t, tx2.Commit())

	count, err := store.MessageCount(ctx, "c1", nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestReplyResolutionSecondPass(t *testing.T) {
	ctx := context.Background()
	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	newTestCorpus(t, store, "c1")

	tx, err := store.BeginImportTx(ctx)
	require.NoError(t, err)
	n, err := New(ctx, tx, store, "c1")
	require.NoError(t, err)

	// Reply arrives in an earlier batch than its target (out-of-order export).
	_, err = n.ProcessBatch(ctx, tx, store, []common.ParsedMessage{
		{PlatformMessageID: ptr("m2"), SenderPlatformID: "carol", SenderDisplayName: "Carol", Ts: 20,
			Type: corpusstore.KindText, Content: ptr("reply"), ReplyToPlatformID: ptr("m1")},
	})
	require.NoError(t, err)

	_, err = n.ProcessBatch(ctx, tx, store, []common.ParsedMessage{
		{PlatformMessageID: ptr("m1"), SenderPlatformID: "dave", SenderDisplayName: "Dave", Ts: 10,
			Type: corpusstore.KindText, Content: ptr("original")},
	})
	require.NoError(t, err)

	require.NoError(t, n.Finalize(ctx, tx, store))
	require.NoError(t, tx.Commit())

	targetID, ok, err := store.FindMessageByPlatformID(ctx, nil, "c1", "m1")
	require.NoError(t, err)
	require.True(t, ok)

	replyID, ok, err := store.FindMessageByPlatformID(ctx, nil, "c1", "m2")
	require.NoError(t, err)
	require.True(t, ok)

	var replyTo int64
	err = store.DB().QueryRowContext(ctx, `SELECT reply_to_message_id FROM message WHERE corpus_id = ? AND id = ?`, "c1", replyID).Scan(&replyTo)
	require.NoError(t, err)
	require.Equal(t, targetID, replyTo)
}

func TestReorderBatchRestoresMonotonicOrder(t *testing.T) {
	ctx := context.Background()
	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	newTestCorpus(t, store, "c1")

	tx, err := store.BeginImportTx(ctx)
	require.NoError(t, err)
	n, err := New(ctx, tx, store, "c1")
	require.NoError(t, err)

	inserted, err := n.ProcessBatch(ctx, tx, store, []common.ParsedMessage{
		{SenderPlatformID: "eve", SenderDisplayName: "Eve", Ts: 300, Type: corpusstore.KindText, Content: ptr("third")},
		{SenderPlatformID: "eve", SenderDisplayName: "Eve", Ts: 100, Type: corpusstore.KindText, Content: ptr("first")},
		{SenderPlatformID: "eve", SenderDisplayName: "Eve", Ts: 200, Type: corpusstore.KindText, Content: ptr("second")},
	})
	require.NoError(t, err)
	require.Equal(t, 3, inserted)
	require.NoError(t, tx.Commit())

	rows, err := store.DB().QueryContext(ctx, `SELECT content FROM message WHERE corpus_id = ? ORDER BY ts`, "c1")
	require.NoError(t, err)
	defer rows.Close()
	var got []string
	for rows.Next() {
		var c string
		require.NoError(t, rows.Scan(&c))
		got = append(got, c)
	}
	require.Equal(t, []string{"first", "second", "third"}, got)
}
