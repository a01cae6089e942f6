package corpusstore

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/chatlab/corpus/internal/chaterr"
)

// UpsertMember inserts a new member or replaces the row for one already
// known at (corpus_id, platform_id) (spec.md §3 Member uniqueness invariant).
func (s *Store) UpsertMember(ctx context.Context, tx *sql.Tx, m Member) (int64, error) {
	aliases, err := json.Marshal(m.Aliases)
	if err != nil {
		return 0, chaterr.New(chaterr.KindInternal, "corpusstore.UpsertMember", err)
	}
	roles, err := json.Marshal(m.Roles)
	if err != nil {
		return 0, chaterr.New(chaterr.KindInternal, "corpusstore.UpsertMember", err)
	}

	exec := queryer(tx, s.db)
	_, err = exec.ExecContext(ctx, `
		INSERT INTO member (corpus_id, id, platform_id, account_name, group_nickname, aliases, roles, avatar_ref)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(corpus_id, platform_id) DO UPDATE SET
			account_name = excluded.account_name,
			group_nickname = excluded.group_nickname,
			aliases = excluded.aliases,
			roles = excluded.roles,
			avatar_ref = excluded.avatar_ref`,
		m.CorpusID, m.ID, m.PlatformID, m.AccountName, m.GroupNickname, string(aliases), string(roles), m.AvatarRef)
	if err != nil {
		return 0, chaterr.New(chaterr.KindInternal, "corpusstore.UpsertMember", err)
	}
	return m.ID, nil
}

// NextMemberID returns the next unused internal member id for a corpus.
func (s *Store) NextMemberID(ctx context.Context, tx *sql.Tx, corpusID string) (int64, error) {
	exec := queryer(tx, s.db)
	var max sql.NullInt64
	err := exec.QueryRowContext(ctx, `SELECT max(id) FROM member WHERE corpus_id = ?`, corpusID).Scan(&max)
	if err != nil {
		return 0, chaterr.New(chaterr.KindInternal, "corpusstore.NextMemberID", err)
	}
	return max.Int64 + 1, nil
}

// FindMemberByPlatformID looks up a member already known in the corpus.
func (s *Store) FindMemberByPlatformID(ctx context.Context, tx *sql.Tx, corpusID, platformID string) (Member, bool, error) {
	exec := queryer(tx, s.db)
	row := exec.QueryRowContext(ctx, `
		SELECT corpus_id, id, platform_id, account_name, group_nickname, aliases, roles, avatar_ref
		FROM member WHERE corpus_id = ? AND platform_id = ?`, corpusID, platformID)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return Member{}, false, nil
	}
	if err != nil {
		return Member{}, false, chaterr.New(chaterr.KindInternal, "corpusstore.FindMemberByPlatformID", err)
	}
	return m, true, nil
}

// ListMembers returns every member of a corpus, ordered by internal id.
func (s *Store) ListMembers(ctx context.Context, corpusID string) ([]Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT corpus_id, id, platform_id, account_name, group_nickname, aliases, roles, avatar_ref
		FROM member WHERE corpus_id = ? ORDER BY id`, corpusID)
	if err != nil {
		return nil, chaterr.New(chaterr.KindInternal, "corpusstore.ListMembers", err)
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, chaterr.New(chaterr.KindInternal, "corpusstore.ListMembers", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMember(s rowScanner) (Member, error) {
	var m Member
	var aliases, roles string
	err := s.Scan(&m.CorpusID, &m.ID, &m.PlatformID, &m.AccountName, &m.GroupNickname, &aliases, &roles, &m.AvatarRef)
	if err != nil {
		return m, err
	}
	_ = json.Unmarshal([]byte(aliases), &m.Aliases)
	_ = json.Unmarshal([]byte(roles), &m.Roles)
	return m, nil
}

// execContexter is satisfied by both *sql.DB and *sql.Tx.
type execContexter interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queryer picks tx when a write transaction is open, db otherwise, so
// callers can share scan/read helpers between import-time and query-time paths.
func queryer(tx *sql.Tx, db *sql.DB) execContexter {
	if tx != nil {
		return tx
	}
	return db
}
