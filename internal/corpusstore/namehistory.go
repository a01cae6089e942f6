package corpusstore

import (
	"context"
	"database/sql"

	"github.com/chatlab/corpus/internal/chaterr"
)

// OpenNameHistory opens a new current-name interval for a member, per
// spec.md §4.3 name-history tracking.
func (s *Store) OpenNameHistory(ctx context.Context, tx *sql.Tx, corpusID string, memberID int64, name string, startTs int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO name_history (corpus_id, member_id, name, start_ts, end_ts)
		VALUES (?, ?, ?, ?, NULL)`, corpusID, memberID, name, startTs)
	if err != nil {
		return chaterr.New(chaterr.KindInternal, "corpusstore.OpenNameHistory", err)
	}
	return nil
}

// CloseCurrentNameHistory closes the currently-open interval (end_ts = NULL)
// for a member at the given timestamp, so a new one can be opened.
func (s *Store) CloseCurrentNameHistory(ctx context.Context, tx *sql.Tx, corpusID string, memberID int64, endTs int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE name_history SET end_ts = ?
		WHERE corpus_id = ? AND member_id = ? AND end_ts IS NULL`, endTs, corpusID, memberID)
	if err != nil {
		return chaterr.New(chaterr.KindInternal, "corpusstore.CloseCurrentNameHistory", err)
	}
	return nil
}

// CurrentName returns the name currently open (end_ts IS NULL) for a
// member, if any has been recorded yet.
func (s *Store) CurrentName(ctx context.Context, tx *sql.Tx, corpusID string, memberID int64) (string, bool, error) {
	exec := queryer(tx, s.db)
	var name string
	err := exec.QueryRowContext(ctx, `
		SELECT name FROM name_history
		WHERE corpus_id = ? AND member_id = ? AND end_ts IS NULL`, corpusID, memberID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, chaterr.New(chaterr.KindInternal, "corpusstore.CurrentName", err)
	}
	return name, true, nil
}

// NameHistoryFor returns the ordered list of name intervals for a member
// (spec.md §4.6 NameHistory query).
func (s *Store) NameHistoryFor(ctx context.Context, corpusID string, memberID int64) ([]NameHistory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT corpus_id, member_id, name, start_ts, end_ts
		FROM name_history WHERE corpus_id = ? AND member_id = ?
		ORDER BY start_ts`, corpusID, memberID)
	if err != nil {
		return nil, chaterr.New(chaterr.KindInternal, "corpusstore.NameHistoryFor", err)
	}
	defer rows.Close()

	var out []NameHistory
	for rows.Next() {
		var nh NameHistory
		var endTs sql.NullInt64
		if err := rows.Scan(&nh.CorpusID, &nh.MemberID, &nh.Name, &nh.StartTs, &endTs); err != nil {
			return nil, chaterr.New(chaterr.KindInternal, "corpusstore.NameHistoryFor", err)
		}
		if endTs.Valid {
			v := endTs.Int64
			nh.EndTs = &v
		}
		out = append(out, nh)
	}
	return out, rows.Err()
}
