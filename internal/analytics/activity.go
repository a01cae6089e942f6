package analytics

import (
	"context"

	"github.com/chatlab/corpus/internal/chaterr"
	"github.com/chatlab/corpus/internal/corpusstore"
)

// ActivityEntry is one member's share of the filtered message volume.
type ActivityEntry struct {
	MemberID     int64
	Name         string
	MessageCount int
	Percentage   float64
}

// ActivityRanking ranks members by message count descending, ties broken
// by member id ascending (spec.md §4.6 Activity ranking).
func ActivityRanking(ctx context.Context, store *corpusstore.Store, corpusID string, f TimeFilter) ([]ActivityEntry, error) {
	query := `SELECT sender_id, count(*) FROM message WHERE corpus_id = ?`
	args := []any{corpusID}
	query, args = appendTimeFilter(query, args, f)
	query += ` GROUP BY sender_id ORDER BY count(*) DESC, sender_id ASC`

	rows, err := store.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, chaterr.New(chaterr.KindInternal, "analytics.ActivityRanking", err)
	}
	defer rows.Close()

	var total int
	type raw struct {
		memberID int64
		count    int
	}
	var entries []raw
	for rows.Next() {
		var r raw
		if err := rows.Scan(&r.memberID, &r.count); err != nil {
			return nil, chaterr.New(chaterr.KindInternal, "analytics.ActivityRanking", err)
		}
		entries = append(entries, r)
		total += r.count
	}
	if err := rows.Err(); err != nil {
		return nil, chaterr.New(chaterr.KindInternal, "analytics.ActivityRanking", err)
	}

	names, err := memberNames(ctx, store, corpusID)
	if err != nil {
		return nil, err
	}

	out := make([]ActivityEntry, 0, len(entries))
	for _, r := range entries {
		pct := 0.0
		if total > 0 {
			pct = float64(r.count) / float64(total)
		}
		out = append(out, ActivityEntry{
			MemberID:     r.memberID,
			Name:         names[r.memberID],
			MessageCount: r.count,
			Percentage:   pct,
		})
	}
	return out, nil
}
