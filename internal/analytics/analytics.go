// Package analytics implements the Analytics Engine (spec.md §4.6): a set
// of read-only query functions over a corpusstore.Store, each pushing its
// time window into SQL rather than filtering fetched rows in Go.
package analytics

import (
	"context"

	"github.com/chatlab/corpus/internal/chaterr"
	"github.com/chatlab/corpus/internal/corpusstore"
)

// TimeFilter narrows an analysis to [StartTs, EndTs], either bound optional.
type TimeFilter struct {
	StartTs *int64
	EndTs   *int64
}

func appendTimeFilter(query string, args []any, f TimeFilter) (string, []any) {
	if f.StartTs != nil {
		query += ` AND ts >= ?`
		args = append(args, *f.StartTs)
	}
	if f.EndTs != nil {
		query += ` AND ts <= ?`
		args = append(args, *f.EndTs)
	}
	return query, args
}

// textRow is the shared shape most analyses fetch: one text message with
// its sender and timestamp, already time-filtered and ordered by SQL.
type textRow struct {
	id       int64
	senderID int64
	ts       int64
	content  string
}

// fetchTextMessages pulls ordered, time-filtered text-kind messages with
// non-null content for one corpus — the common substrate for streak,
// chain, and catchphrase analyses.
func fetchTextMessages(ctx context.Context, store *corpusstore.Store, corpusID string, f TimeFilter) ([]textRow, error) {
	query := `
		SELECT id, sender_id, ts, content FROM message
		WHERE corpus_id = ? AND type = ? AND content IS NOT NULL`
	args := []any{corpusID, string(corpusstore.KindText)}
	query, args = appendTimeFilter(query, args, f)
	query += ` ORDER BY ts, id`

	rows, err := store.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, chaterr.New(chaterr.KindInternal, "analytics.fetchTextMessages", err)
	}
	defer rows.Close()

	var out []textRow
	for rows.Next() {
		var r textRow
		if err := rows.Scan(&r.id, &r.senderID, &r.ts, &r.content); err != nil {
			return nil, chaterr.New(chaterr.KindInternal, "analytics.fetchTextMessages", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// memberNames resolves member ids to display names for output shaping.
func memberNames(ctx context.Context, store *corpusstore.Store, corpusID string) (map[int64]string, error) {
	members, err := store.ListMembers(ctx, corpusID)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(members))
	for _, m := range members {
		names[m.ID] = m.DisplayName()
	}
	return names, nil
}
