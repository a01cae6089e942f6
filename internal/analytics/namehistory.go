package analytics

import (
	"context"

	"github.com/chatlab/corpus/internal/corpusstore"
)

// NameHistoryInterval is one (name, startTs, endTs) range; EndTs nil marks
// the name currently in use (spec.md §4.6 NameHistory query).
type NameHistoryInterval struct {
	Name    string
	StartTs int64
	EndTs   *int64
}

// NameHistory returns a member's name intervals in chronological order.
// The query carries no time filter of its own — it returns the full
// identity timeline regardless of the message-range filter applied to
// other analyses, per spec.md §3's definition of NameHistory as metadata
// about the member, not about a window of messages.
func NameHistory(ctx context.Context, store *corpusstore.Store, corpusID string, memberID int64) ([]NameHistoryInterval, error) {
	hist, err := store.NameHistoryFor(ctx, corpusID, memberID)
	if err != nil {
		return nil, err
	}
	out := make([]NameHistoryInterval, 0, len(hist))
	for _, h := range hist {
		out = append(out, NameHistoryInterval{Name: h.Name, StartTs: h.StartTs, EndTs: h.EndTs})
	}
	return out, nil
}
