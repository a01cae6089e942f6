package corpusstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chatlab/corpus/internal/chaterr"
)

// CreateCorpus inserts a new corpus row. Called once, at the start of a
// successful first import (spec.md §3 Corpus lifecycle).
func (s *Store) CreateCorpus(ctx context.Context, c Corpus) error {
	version, err := s.currentVersion()
	if err != nil {
		return chaterr.New(chaterr.KindStoreIntegrity, "corpusstore.CreateCorpus", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO meta (corpus_id, name, platform, chat_type, owner_platform_id, min_ts, max_ts, schema_version, partial)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		c.ID, c.Name, c.Platform, string(c.ChatType), c.OwnerPlatformID, c.MinTs, c.MaxTs, version)
	if err != nil {
		return chaterr.New(chaterr.KindInternal, "corpusstore.CreateCorpus", err)
	}
	return nil
}

// GetCorpus loads one corpus by id.
func (s *Store) GetCorpus(ctx context.Context, corpusID string) (Corpus, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT corpus_id, name, platform, chat_type, owner_platform_id, min_ts, max_ts, schema_version, partial
		FROM meta WHERE corpus_id = ?`, corpusID)
	return scanCorpus(row)
}

// ListCorpora returns every corpus known to the store, per §6 sessions.list.
func (s *Store) ListCorpora(ctx context.Context) ([]Corpus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT corpus_id, name, platform, chat_type, owner_platform_id, min_ts, max_ts, schema_version, partial
		FROM meta ORDER BY corpus_id`)
	if err != nil {
		return nil, chaterr.New(chaterr.KindInternal, "corpusstore.ListCorpora", err)
	}
	defer rows.Close()

	var out []Corpus
	for rows.Next() {
		c, err := scanCorpusRows(rows)
		if err != nil {
			return nil, chaterr.New(chaterr.KindInternal, "corpusstore.ListCorpora", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCorpus removes a corpus and everything beneath it, transactionally
// (spec.md §3 ownership, §4.8 delete is transactional with C4).
func (s *Store) DeleteCorpus(ctx context.Context, corpusID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return chaterr.New(chaterr.KindInternal, "corpusstore.DeleteCorpus", err)
	}
	for _, stmt := range []string{
		`DELETE FROM name_history WHERE corpus_id = ?`,
		`DELETE FROM message WHERE corpus_id = ?`,
		`DELETE FROM member WHERE corpus_id = ?`,
		`DELETE FROM meta WHERE corpus_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, corpusID); err != nil {
			tx.Rollback()
			return chaterr.New(chaterr.KindInternal, "corpusstore.DeleteCorpus", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return chaterr.New(chaterr.KindInternal, "corpusstore.DeleteCorpus", err)
	}
	return nil
}

// SetOwner records the member the corpus owner identifies as.
func (s *Store) SetOwner(ctx context.Context, corpusID, platformID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE meta SET owner_platform_id = ? WHERE corpus_id = ?`, platformID, corpusID)
	if err != nil {
		return chaterr.New(chaterr.KindInternal, "corpusstore.SetOwner", err)
	}
	return nil
}

// MarkPartial flags a corpus as the product of an aborted or canceled
// import (spec.md §4.4, §4.5 cancellation semantics).
func (s *Store) MarkPartial(ctx context.Context, corpusID string, partial bool) error {
	_, err := s.db.ExecContext(ctx, `UPDATE meta SET partial = ? WHERE corpus_id = ?`, boolToInt(partial), corpusID)
	if err != nil {
		return chaterr.New(chaterr.KindInternal, "corpusstore.MarkPartial", err)
	}
	return nil
}

// UpdateBounds extends the corpus's recorded [minTs, maxTs] message window.
func (s *Store) UpdateBounds(ctx context.Context, corpusID string, minTs, maxTs int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE meta SET
			min_ts = CASE WHEN min_ts = 0 OR ? < min_ts THEN ? ELSE min_ts END,
			max_ts = CASE WHEN ? > max_ts THEN ? ELSE max_ts END
		WHERE corpus_id = ?`, minTs, minTs, maxTs, maxTs, corpusID)
	if err != nil {
		return chaterr.New(chaterr.KindInternal, "corpusstore.UpdateBounds", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCorpus(row *sql.Row) (Corpus, error) {
	return scanCorpusGeneric(row)
}

func scanCorpusRows(rows *sql.Rows) (Corpus, error) {
	return scanCorpusGeneric(rows)
}

func scanCorpusGeneric(s rowScanner) (Corpus, error) {
	var c Corpus
	var chatType string
	var partial int
	err := s.Scan(&c.ID, &c.Name, &c.Platform, &chatType, &c.OwnerPlatformID, &c.MinTs, &c.MaxTs, &c.SchemaVersion, &partial)
	if err != nil {
		if err == sql.ErrNoRows {
			return c, chaterr.New(chaterr.KindIO, "corpusstore.scanCorpus", fmt.Errorf("corpus not found"))
		}
		return c, err
	}
	c.ChatType = ChatType(chatType)
	c.Partial = partial != 0
	return c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
