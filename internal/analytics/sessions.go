package analytics

import (
	"context"
	"sort"

	"github.com/chatlab/corpus/internal/corpusstore"
)

// SessionSummary is the restored session/burst analysis (SPEC_FULL.md
// §4.6 expansion): aggregate shape of a corpus's conversation bursts,
// computed purely from the store's on-demand session partition.
type SessionSummary struct {
	SessionCount     int
	MeanLength       float64
	MedianLength     float64
	LongestIdleGap   int64
	LongestSessionID int64
}

// Sessions computes the burst summary over [f.StartTs, f.EndTs], reusing
// corpusstore.ComputeSessions (itself time-filtered in SQL) rather than
// re-implementing the gap partition here.
func Sessions(ctx context.Context, store *corpusstore.Store, corpusID string, f TimeFilter, idleGapSeconds int64) (SessionSummary, error) {
	sessions, err := store.ComputeSessions(ctx, corpusID, idleGapSeconds, f.StartTs, f.EndTs)
	if err != nil {
		return SessionSummary{}, err
	}
	if len(sessions) == 0 {
		return SessionSummary{}, nil
	}

	lengths := make([]int, len(sessions))
	var total int
	var longestGap int64
	var longestID int64
	var longestLen int
	for i, s := range sessions {
		lengths[i] = s.MessageCount
		total += s.MessageCount
		if s.MessageCount > longestLen {
			longestLen = s.MessageCount
			longestID = s.ID
		}
	}
	for i := 1; i < len(sessions); i++ {
		gap := sessions[i].StartTs - sessions[i-1].EndTs
		if gap > longestGap {
			longestGap = gap
		}
	}

	sort.Ints(lengths)
	median := medianOf(lengths)

	return SessionSummary{
		SessionCount:     len(sessions),
		MeanLength:       float64(total) / float64(len(sessions)),
		MedianLength:     median,
		LongestIdleGap:   longestGap,
		LongestSessionID: longestID,
	}, nil
}

func medianOf(sorted []int) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}
