package corpusstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"hash/fnv"
	"strconv"

	"github.com/chatlab/corpus/internal/chaterr"
)

// InsertMessage writes one message inside the caller's import transaction,
// preserving the monotonically-assigned id passed in (spec.md §3 Message).
func (s *Store) InsertMessage(ctx context.Context, tx *sql.Tx, m Message) error {
	var extra []byte
	if m.Extra != nil {
		b, err := json.Marshal(m.Extra)
		if err != nil {
			return chaterr.New(chaterr.KindInternal, "corpusstore.InsertMessage", err)
		}
		extra = b
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO message (corpus_id, id, sender_id, ts, type, content, reply_to_message_id, platform_message_id, extra, dangling_reply_platform_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.CorpusID, m.ID, m.SenderID, m.Ts, string(m.Type), m.Content, m.ReplyToMessageID, m.PlatformMessageID, nullableBytes(extra), m.DanglingReplyPlatformID)
	if err != nil {
		return chaterr.New(chaterr.KindInternal, "corpusstore.InsertMessage", err)
	}
	return nil
}

// NextMessageID returns the next unused internal message id for a corpus.
func (s *Store) NextMessageID(ctx context.Context, tx *sql.Tx, corpusID string) (int64, error) {
	exec := queryer(tx, s.db)
	var max sql.NullInt64
	err := exec.QueryRowContext(ctx, `SELECT max(id) FROM message WHERE corpus_id = ?`, corpusID).Scan(&max)
	if err != nil {
		return 0, chaterr.New(chaterr.KindInternal, "corpusstore.NextMessageID", err)
	}
	return max.Int64 + 1, nil
}

// FindMessageByPlatformID resolves a platform message id to an internal one
// for reply binding, including messages written earlier in the same
// transaction (spec.md §4.3, §9 reply resolution).
func (s *Store) FindMessageByPlatformID(ctx context.Context, tx *sql.Tx, corpusID, platformMessageID string) (int64, bool, error) {
	exec := queryer(tx, s.db)
	var id int64
	err := exec.QueryRowContext(ctx, `
		SELECT id FROM message WHERE corpus_id = ? AND platform_message_id = ? LIMIT 1`,
		corpusID, platformMessageID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, chaterr.New(chaterr.KindInternal, "corpusstore.FindMessageByPlatformID", err)
	}
	return id, true, nil
}

// RebindReply sets reply_to_message_id for a message once its target is
// resolved on the normalizer's second pass.
func (s *Store) RebindReply(ctx context.Context, tx *sql.Tx, corpusID string, messageID, replyToID int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE message SET reply_to_message_id = ?, dangling_reply_platform_id = NULL
		WHERE corpus_id = ? AND id = ?`,
		replyToID, corpusID, messageID)
	if err != nil {
		return chaterr.New(chaterr.KindInternal, "corpusstore.RebindReply", err)
	}
	return nil
}

// ExistsByDedupKey reports whether a message with this (ts, sender,
// content-hash) tuple is already stored, for re-import deduplication
// (spec.md §4.3 Deduplication). contentHash is the normalizer's digest of
// the message content, compared against a digest of the stored content.
func (s *Store) ExistsByDedupKey(ctx context.Context, tx *sql.Tx, corpusID string, senderID, ts int64, contentHash string) (bool, error) {
	exec := queryer(tx, s.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT content FROM message WHERE corpus_id = ? AND sender_id = ? AND ts = ?`,
		corpusID, senderID, ts)
	if err != nil {
		return false, chaterr.New(chaterr.KindInternal, "corpusstore.ExistsByDedupKey", err)
	}
	defer rows.Close()

	for rows.Next() {
		var content sql.NullString
		if err := rows.Scan(&content); err != nil {
			return false, chaterr.New(chaterr.KindInternal, "corpusstore.ExistsByDedupKey", err)
		}
		if ContentHash(content.String) == contentHash {
			return true, nil
		}
	}
	return false, rows.Err()
}

// ContentHash is the normalizer's digest function for dedup comparison,
// exported so InsertMessage callers and ExistsByDedupKey agree on it.
func ContentHash(content string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(content))
	return strconv.FormatUint(h.Sum64(), 16)
}

// MessageCount returns the total message count for a corpus, optionally
// restricted to [startTs, endTs].
func (s *Store) MessageCount(ctx context.Context, corpusID string, startTs, endTs *int64) (int, error) {
	query := `SELECT count(*) FROM message WHERE corpus_id = ?`
	args := []any{corpusID}
	query, args = appendTimeFilter(query, args, startTs, endTs)
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, chaterr.New(chaterr.KindInternal, "corpusstore.MessageCount", err)
	}
	return count, nil
}

// appendTimeFilter pushes an optional [startTs, endTs] window into a query's
// WHERE clause, per spec.md §4.6's requirement that filtering happen in SQL.
func appendTimeFilter(query string, args []any, startTs, endTs *int64) (string, []any) {
	if startTs != nil {
		query += ` AND ts >= ?`
		args = append(args, *startTs)
	}
	if endTs != nil {
		query += ` AND ts <= ?`
		args = append(args, *endTs)
	}
	return query, args
}

func nullableBytes(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}
