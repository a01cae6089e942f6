// Package catalog implements the Session Catalog (spec.md §4.8): the list
// of imported corpora, the currently-selected one, and lightweight
// per-corpus UI state (owner, aliases, last time filter).
package catalog

import (
	"context"
	"encoding/json"

	"github.com/chatlab/corpus/internal/chaterr"
	"github.com/chatlab/corpus/internal/corpusstore"
)

// TimeFilter mirrors analytics.TimeFilter's shape for the "last time
// filter" a user left a corpus's view on; catalog doesn't depend on the
// analytics package so it's redeclared here rather than imported.
type TimeFilter struct {
	StartTs *int64 `json:"startTs,omitempty"`
	EndTs   *int64 `json:"endTs,omitempty"`
}

// State is the JSON shape persisted in meta.catalog_state.
type State struct {
	Aliases        []string   `json:"aliases,omitempty"`
	LastTimeFilter TimeFilter `json:"lastTimeFilter"`
}

// Catalog wraps a corpusstore.Store with the catalog operations.
type Catalog struct {
	store *corpusstore.Store
}

// New builds a Catalog bound to store.
func New(store *corpusstore.Store) *Catalog {
	return &Catalog{store: store}
}

// List returns every known corpus (spec.md §6 sessions.list).
func (c *Catalog) List(ctx context.Context) ([]corpusstore.Corpus, error) {
	return c.store.ListCorpora(ctx)
}

// Select marks corpusID as the active corpus (spec.md §6 sessions.select).
// It verifies the corpus exists first so a stale or mistyped id can't
// silently become "selected".
func (c *Catalog) Select(ctx context.Context, corpusID string) error {
	if _, err := c.store.GetCorpus(ctx, corpusID); err != nil {
		return err
	}
	return c.store.SetActiveCorpus(ctx, corpusID)
}

// Active returns the currently-selected corpus, or ("", nil) if none has
// been selected yet.
func (c *Catalog) Active(ctx context.Context) (string, error) {
	return c.store.ActiveCorpus(ctx)
}

// Delete removes a corpus and its data (transactional with C4, spec.md
// §4.8), clearing the active selection first if it pointed at this corpus.
func (c *Catalog) Delete(ctx context.Context, corpusID string) error {
	active, err := c.store.ActiveCorpus(ctx)
	if err != nil {
		return err
	}
	if active == corpusID {
		if err := c.store.SetActiveCorpus(ctx, ""); err != nil {
			return err
		}
	}
	return c.store.DeleteCorpus(ctx, corpusID)
}

// SetOwner records which member the corpus's owner identifies as (spec.md
// §6 sessions.setOwner); an empty platformID clears ownership.
func (c *Catalog) SetOwner(ctx context.Context, corpusID, platformID string) error {
	return c.store.SetOwner(ctx, corpusID, platformID)
}

// State returns a corpus's persisted UI state, decoding the store's JSON
// blob. A corpus with no state yet returns the zero State.
func (c *Catalog) State(ctx context.Context, corpusID string) (State, error) {
	raw, err := c.store.CatalogState(ctx, corpusID)
	if err != nil {
		return State{}, err
	}
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return State{}, chaterr.New(chaterr.KindInternal, "catalog.State", err)
	}
	return st, nil
}

// SetState overwrites a corpus's UI state.
func (c *Catalog) SetState(ctx context.Context, corpusID string, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return chaterr.New(chaterr.KindInternal, "catalog.SetState", err)
	}
	return c.store.SetCatalogState(ctx, corpusID, string(raw))
}

// SetLastTimeFilter is a convenience wrapper updating just the time-filter
// field of a corpus's UI state, leaving aliases untouched.
func (c *Catalog) SetLastTimeFilter(ctx context.Context, corpusID string, f TimeFilter) error {
	st, err := c.State(ctx, corpusID)
	if err != nil {
		return err
	}
	st.LastTimeFilter = f
	return c.SetState(ctx, corpusID, st)
}
