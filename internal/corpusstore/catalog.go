package corpusstore

import (
	"context"
	"database/sql"

	"github.com/chatlab/corpus/internal/chaterr"
)

// CatalogState returns the raw JSON blob of per-corpus UI state (spec.md
// §4.8: owner selection already lives in owner_platform_id; this blob
// carries the rest — aliases, last time filter). Internal/catalog owns
// the JSON shape; the store just persists the bytes.
func (s *Store) CatalogState(ctx context.Context, corpusID string) (string, error) {
	var state string
	err := s.db.QueryRowContext(ctx, `SELECT catalog_state FROM meta WHERE corpus_id = ?`, corpusID).Scan(&state)
	if err == sql.ErrNoRows {
		return "{}", nil
	}
	if err != nil {
		return "", chaterr.New(chaterr.KindInternal, "corpusstore.CatalogState", err)
	}
	return state, nil
}

// SetCatalogState overwrites a corpus's UI-state blob.
func (s *Store) SetCatalogState(ctx context.Context, corpusID, stateJSON string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE meta SET catalog_state = ? WHERE corpus_id = ?`, stateJSON, corpusID)
	if err != nil {
		return chaterr.New(chaterr.KindInternal, "corpusstore.SetCatalogState", err)
	}
	return nil
}

// ActiveCorpus returns the id of the currently-selected corpus, or "" if
// none has been selected yet.
func (s *Store) ActiveCorpus(ctx context.Context) (string, error) {
	var id sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT active_corpus_id FROM app_state WHERE id = 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", chaterr.New(chaterr.KindInternal, "corpusstore.ActiveCorpus", err)
	}
	return id.String, nil
}

// SetActiveCorpus records which corpus the catalog currently has selected
// (spec.md §4.8 sessions.select), upserting the singleton row.
func (s *Store) SetActiveCorpus(ctx context.Context, corpusID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_state (id, active_corpus_id) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET active_corpus_id = excluded.active_corpus_id`, corpusID)
	if err != nil {
		return chaterr.New(chaterr.KindInternal, "corpusstore.SetActiveCorpus", err)
	}
	return nil
}
