package corpusstore

import (
	"context"

	"github.com/chatlab/corpus/internal/chaterr"
)

// DefaultIdleGapSeconds is the default gap, in seconds, beyond which a new
// Session begins (spec.md §3 Session).
const DefaultIdleGapSeconds = 300

// ComputeSessions partitions a corpus's messages into bursts using a
// gap-based window query (spec.md §4.4: "computed on demand"). idleGapSeconds
// <= 0 selects DefaultIdleGapSeconds.
func (s *Store) ComputeSessions(ctx context.Context, corpusID string, idleGapSeconds int64, startTs, endTs *int64) ([]Session, error) {
	if idleGapSeconds <= 0 {
		idleGapSeconds = DefaultIdleGapSeconds
	}

	query := `
		WITH filtered AS (
			SELECT id, ts FROM message WHERE corpus_id = ?`
	args := []any{corpusID}
	query, args = appendTimeFilter(query, args, startTs, endTs)
	query += `
		),
		gaps AS (
			SELECT id, ts,
				CASE WHEN ts - LAG(ts) OVER (ORDER BY ts, id) > ? THEN 1 ELSE 0 END AS is_new_session
			FROM filtered
		),
		sessioned AS (
			SELECT id, ts, SUM(is_new_session) OVER (ORDER BY ts, id) AS session_idx
			FROM gaps
		)
		SELECT session_idx, min(ts), max(ts), min(id), count(*)
		FROM sessioned
		GROUP BY session_idx
		ORDER BY session_idx`
	args = append(args, idleGapSeconds)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, chaterr.New(chaterr.KindInternal, "corpusstore.ComputeSessions", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.StartTs, &sess.EndTs, &sess.FirstMessageID, &sess.MessageCount); err != nil {
			return nil, chaterr.New(chaterr.KindInternal, "corpusstore.ComputeSessions", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}
