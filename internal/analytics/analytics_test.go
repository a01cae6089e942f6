package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatlab/corpus/internal/corpusstore"
)

func ptr(s string) *string { return &s }

// seedCorpus builds a small fixed conversation: alice and bob alternate,
// with a couple of repeated/"me too" texts and a short alice monologue,
// so every analysis in this package has something non-trivial to find.
func seedCorpus(t *testing.T, store *corpusstore.Store) string {
	t.Helper()
	ctx := context.Background()
	corpusID := "c1"
	require.NoError(t, store.CreateCorpus(ctx, corpusstore.Corpus{
		ID: corpusID, Name: "fixture", Platform: "line", ChatType: corpusstore.ChatTypeGroup,
	}))

	tx, err := store.BeginImportTx(ctx)
	require.NoError(t, err)

	aliceID, err := store.UpsertMember(ctx, tx, corpusstore.Member{CorpusID: corpusID, ID: 1, PlatformID: "alice", AccountName: "Alice"})
	require.NoError(t, err)
	bobID, err := store.UpsertMember(ctx, tx, corpusstore.Member{CorpusID: corpusID, ID: 2, PlatformID: "bob", AccountName: "Bob"})
	require.NoError(t, err)
	require.NoError(t, store.OpenNameHistory(ctx, tx, corpusID, aliceID, "Alice", 0))
	require.NoError(t, store.OpenNameHistory(ctx, tx, corpusID, bobID, "Bob", 0))

	baseDay := int64(1_700_000_000) // arbitrary fixed epoch, day-aligned enough for the fixture
	msgs := []corpusstore.Message{
		{CorpusID: corpusID, ID: 1, SenderID: aliceID, Ts: baseDay + 0, Type: corpusstore.KindText, Content: ptr("good morning")},
		{CorpusID: corpusID, ID: 2, SenderID: aliceID, Ts: baseDay + 10, Type: corpusstore.KindText, Content: ptr("anyone around")},
		{CorpusID: corpusID, ID: 3, SenderID: aliceID, Ts: baseDay + 20, Type: corpusstore.KindText, Content: ptr("bueller")},
		{CorpusID: corpusID, ID: 4, SenderID: bobID, Ts: baseDay + 30, Type: corpusstore.KindText, Content: ptr("lol")},
		{CorpusID: corpusID, ID: 5, SenderID: aliceID, Ts: baseDay + 40, Type: corpusstore.KindText, Content: ptr("lol")},
		{CorpusID: corpusID, ID: 6, SenderID: bobID, Ts: baseDay + 5000, Type: corpusstore.KindText, Content: ptr("new burst")},
	}
	for _, m := range msgs {
		require.NoError(t, store.InsertMessage(ctx, tx, m))
	}
	require.NoError(t, tx.Commit())
	return corpusID
}

func TestActivityRanking(t *testing.T) {
	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	corpusID := seedCorpus(t, store)

	entries, err := ActivityRanking(context.Background(), store, corpusID, TimeFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 4, entries[0].MessageCount) // alice
	require.InDelta(t, 4.0/6.0, entries[0].Percentage, 0.0001)
	require.Equal(t, 2, entries[1].MessageCount) // bob
}

func TestActivityRankingTimeFilterPushedIntoQuery(t *testing.T) {
	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	corpusID := seedCorpus(t, store)

	start := int64(1_700_000_000)
	end := int64(1_700_000_035)
	entries, err := ActivityRanking(context.Background(), store, corpusID, TimeFilter{StartTs: &start, EndTs: &end})
	require.NoError(t, err)
	var total int
	for _, e := range entries {
		total += e.MessageCount
	}
	require.Equal(t, 4, total) // messages 1-4 only
}

func TestDragonKingPicksTopSenderPerDay(t *testing.T) {
	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	corpusID := seedCorpus(t, store)

	result, err := DragonKing(context.Background(), store, corpusID, TimeFilter{}, time.UTC)
	require.NoError(t, err)
	require.Equal(t, 1, result.TotalDays)
	require.Len(t, result.Entries, 1)
	require.Equal(t, "Alice", result.Entries[0].Name)
	require.Equal(t, 1, result.Entries[0].DaysWon)
}

func TestMonologueStreaksFindsAliceOpeningRun(t *testing.T) {
	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	corpusID := seedCorpus(t, store)

	entries, record, err := MonologueStreaks(context.Background(), store, corpusID, TimeFilter{}, 0, 0)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	require.NotNil(t, record)
	require.Equal(t, 3, record.ComboLength)
	require.Equal(t, "Alice", entries[0].Name)
	require.Equal(t, 1, entries[0].TotalStreaks)
	require.Equal(t, 1, entries[0].LowStreak)
}

func TestRepeatChainsFindsLolChain(t *testing.T) {
	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	corpusID := seedCorpus(t, store)

	result, err := RepeatChains(context.Background(), store, corpusID, TimeFilter{}, 0)
	require.NoError(t, err)
	require.Len(t, result.HotContents, 1)
	require.Equal(t, "lol", result.HotContents[0].Content)
	require.Equal(t, 2, result.HotContents[0].MaxChainLength)
	require.Equal(t, "Bob", result.HotContents[0].OriginatorName)
	require.Equal(t, 1, result.ChainLengthDistribution[2])
}

func TestCatchphrasesExcludesShortAndRespectsK(t *testing.T) {
	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	corpusID := seedCorpus(t, store)

	members, err := Catchphrases(context.Background(), store, corpusID, TimeFilter{}, 5, 2, 30)
	require.NoError(t, err)
	require.Len(t, members, 2)
	for _, m := range members {
		for _, cp := range m.Catchphrases {
			require.GreaterOrEqual(t, len([]rune(cp.Content)), 2)
		}
	}
}

func TestSessionsSummaryFindsTwoBursts(t *testing.T) {
	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	corpusID := seedCorpus(t, store)

	summary, err := Sessions(context.Background(), store, corpusID, TimeFilter{}, 300)
	require.NoError(t, err)
	require.Equal(t, 2, summary.SessionCount)
	require.Greater(t, summary.LongestIdleGap, int64(300))
}

func TestHeatmapBucketsByWeekdayAndHour(t *testing.T) {
	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	corpusID := seedCorpus(t, store)

	cells, err := Heatmap(context.Background(), store, corpusID, TimeFilter{}, time.UTC)
	require.NoError(t, err)
	require.NotEmpty(t, cells)
	var total int
	for _, c := range cells {
		total += c.Count
	}
	require.Equal(t, 6, total)
}

func TestNameHistoryReturnsOpenInterval(t *testing.T) {
	store, err := corpusstore.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	corpusID := seedCorpus(t, store)

	hist, err := NameHistory(context.Background(), store, corpusID, 1)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	require.Equal(t, "Alice", hist[0].Name)
	require.Nil(t, hist[0].EndTs)
}
