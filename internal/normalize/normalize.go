// Package normalize implements the Import Coordinator's Normalizer stage
// (spec.md §4.3): it canonicalizes sender identity, tracks name history,
// resolves replies, reorders out-of-order batches, and deduplicates
// re-imported messages before they reach the Corpus Store.
package normalize

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/chatlab/corpus/internal/corpusstore"
	"github.com/chatlab/corpus/internal/parser/common"
)

// crossBatchToleranceSeconds bounds how far a later batch's first timestamp
// may fall behind the latest timestamp seen so far before it is reported as
// a warning rather than treated as routine batch-to-batch jitter (spec.md
// §4.3: "cross-batch inversions beyond a small tolerance produce a warning,
// not an error" — the spec leaves the tolerance unspecified).
const crossBatchToleranceSeconds = 5

type pendingReply struct {
	messageID       int64
	platformReplyID string
}

// Normalizer holds the per-corpus state that must survive across batches
// within a single import run: the platform-id-to-internal-id member cache,
// the platform-message-id index used for reply resolution, and the set of
// replies still waiting on a second pass.
type Normalizer struct {
	corpusID string

	memberIDByPlatformID      map[string]int64
	rosterFallbackName        map[string]string
	displayNameByPlatformID   map[string]string
	messageIDByPlatformID     map[string]int64

	nextMemberID  int64
	nextMessageID int64
	lastTs        int64

	pending  []pendingReply
	Warnings []string
}

// New prepares a Normalizer for one corpus, picking up where a prior
// partial import left off by reading the current max member/message ids.
func New(ctx context.Context, tx *sql.Tx, store *corpusstore.Store, corpusID string) (*Normalizer, error) {
	nextMemberID, err := store.NextMemberID(ctx, tx, corpusID)
	if err != nil {
		return nil, err
	}
	nextMessageID, err := store.NextMessageID(ctx, tx, corpusID)
	if err != nil {
		return nil, err
	}
	return &Normalizer{
		corpusID:                corpusID,
		memberIDByPlatformID:    map[string]int64{},
		rosterFallbackName:      map[string]string{},
		displayNameByPlatformID: map[string]string{},
		messageIDByPlatformID:   map[string]int64{},
		nextMemberID:            nextMemberID,
		nextMessageID:           nextMessageID,
	}, nil
}

// RegisterRoster upserts a parser-declared member roster ahead of any
// messages, reusing the corpus's existing member row when one already
// exists at this platform id. Roster members with no message yet get no
// NameHistory interval: an interval's start_ts can only be the timestamp of
// the message that first evidences it.
func (n *Normalizer) RegisterRoster(ctx context.Context, tx *sql.Tx, store *corpusstore.Store, roster []common.ParsedMember) error {
	for _, pm := range roster {
		if pm.PlatformID == "" {
			continue
		}
		if _, ok := n.memberIDByPlatformID[pm.PlatformID]; ok {
			continue
		}
		existing, found, err := store.FindMemberByPlatformID(ctx, tx, n.corpusID, pm.PlatformID)
		id := n.nextMemberID
		if found {
			id = existing.ID
		} else {
			n.nextMemberID++
		}
		m := corpusstore.Member{
			CorpusID: n.corpusID, ID: id, PlatformID: pm.PlatformID,
			AccountName: pm.AccountName, GroupNickname: pm.GroupNickname,
		}
		if found {
			m.Aliases = existing.Aliases
			m.Roles = existing.Roles
			m.AvatarRef = existing.AvatarRef
		}
		if _, err := store.UpsertMember(ctx, tx, m); err != nil {
			return err
		}
		n.memberIDByPlatformID[pm.PlatformID] = id
		n.rosterFallbackName[pm.PlatformID] = m.DisplayName()
	}
	return nil
}

// ProcessBatch normalizes and inserts one batch of parsed messages inside
// the caller's transaction, returning the number actually inserted (a
// re-import duplicate is detected and skipped, not counted).
func (n *Normalizer) ProcessBatch(ctx context.Context, tx *sql.Tx, store *corpusstore.Store, batch []common.ParsedMessage) (int, error) {
	ordered := reorderBatch(batch)
	inserted := 0

	for _, pm := range ordered {
		if n.lastTs != 0 && pm.Ts < n.lastTs-crossBatchToleranceSeconds {
			n.Warnings = append(n.Warnings, fmt.Sprintf(
				"timestamp inversion: message at ts=%d arrived after ts=%d", pm.Ts, n.lastTs))
		}
		if pm.Ts > n.lastTs {
			n.lastTs = pm.Ts
		}

		senderID, err := n.resolveSender(ctx, tx, store, pm.SenderPlatformID, pm.SenderDisplayName, pm.Ts)
		if err != nil {
			return inserted, err
		}

		var contentStr string
		if pm.Content != nil {
			contentStr = *pm.Content
		}
		dup, err := store.ExistsByDedupKey(ctx, tx, n.corpusID, senderID, pm.Ts, corpusstore.ContentHash(contentStr))
		if err != nil {
			return inserted, err
		}
		if dup {
			continue
		}

		msgID := n.nextMessageID
		n.nextMessageID++

		msg := corpusstore.Message{
			CorpusID:          n.corpusID,
			ID:                msgID,
			SenderID:          senderID,
			Ts:                pm.Ts,
			Type:              pm.Type,
			Content:           pm.Content,
			PlatformMessageID: pm.PlatformMessageID,
			Extra:             pm.Extra,
		}

		if pm.ReplyToPlatformID != nil {
			target, ok := n.messageIDByPlatformID[*pm.ReplyToPlatformID]
			if !ok {
				target, ok, err = store.FindMessageByPlatformID(ctx, tx, n.corpusID, *pm.ReplyToPlatformID)
				if err != nil {
					return inserted, err
				}
			}
			if ok {
				t := target
				msg.ReplyToMessageID = &t
			} else {
				rid := *pm.ReplyToPlatformID
				msg.DanglingReplyPlatformID = &rid
				n.pending = append(n.pending, pendingReply{messageID: msgID, platformReplyID: rid})
			}
		}

		if err := store.InsertMessage(ctx, tx, msg); err != nil {
			return inserted, err
		}
		if pm.PlatformMessageID != nil {
			n.messageIDByPlatformID[*pm.PlatformMessageID] = msgID
		}
		inserted++
	}

	return inserted, nil
}

// Finalize runs the second reply-resolution pass (spec.md §4.3): replies
// that referenced an id not yet seen at insertion time get one more
// opportunity to bind, now that the whole file has been normalized. Any
// still unresolved stay dangling, their original platform id preserved in
// the message row rather than dropped.
func (n *Normalizer) Finalize(ctx context.Context, tx *sql.Tx, store *corpusstore.Store) error {
	for _, p := range n.pending {
		target, ok, err := store.FindMessageByPlatformID(ctx, tx, n.corpusID, p.platformReplyID)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := store.RebindReply(ctx, tx, n.corpusID, p.messageID, target); err != nil {
			return err
		}
	}
	n.pending = nil
	return nil
}

// resolveSender maps (platformId, displayName) to a stable internal member
// id, creating the member on first sight and otherwise reusing it, and
// maintains the NameHistory interval for that member (spec.md §4.3).
func (n *Normalizer) resolveSender(ctx context.Context, tx *sql.Tx, store *corpusstore.Store, platformID, rawDisplayName string, ts int64) (int64, error) {
	displayName := rawDisplayName
	if displayName == "" {
		if fallback, ok := n.rosterFallbackName[platformID]; ok {
			displayName = fallback
		} else {
			displayName = platformID
		}
	}

	id, known := n.memberIDByPlatformID[platformID]
	if !known {
		existing, found, err := store.FindMemberByPlatformID(ctx, tx, n.corpusID, platformID)
		if err != nil {
			return 0, err
		}
		if found {
			id = existing.ID
		} else {
			id = n.nextMemberID
			n.nextMemberID++
			m := corpusstore.Member{CorpusID: n.corpusID, ID: id, PlatformID: platformID, AccountName: displayName}
			if _, err := store.UpsertMember(ctx, tx, m); err != nil {
				return 0, err
			}
		}
		n.memberIDByPlatformID[platformID] = id
	}

	prevName, hadName := n.displayNameByPlatformID[platformID]
	switch {
	case !hadName:
		if err := store.OpenNameHistory(ctx, tx, n.corpusID, id, displayName, ts); err != nil {
			return 0, err
		}
		n.displayNameByPlatformID[platformID] = displayName
	case displayName != prevName:
		if err := store.CloseCurrentNameHistory(ctx, tx, n.corpusID, id, ts); err != nil {
			return 0, err
		}
		if err := store.OpenNameHistory(ctx, tx, n.corpusID, id, displayName, ts); err != nil {
			return 0, err
		}
		n.displayNameByPlatformID[platformID] = displayName
	}

	return id, nil
}

// reorderBatch restores (timestamp, platformMessageId) order within a
// batch that arrived non-monotonic, e.g. an export that interleaves
// multiple threads (spec.md §4.3). Batches already in order are returned
// unchanged to avoid an unnecessary sort.
func reorderBatch(batch []common.ParsedMessage) []common.ParsedMessage {
	monotonic := true
	for i := 1; i < len(batch); i++ {
		if batch[i].Ts < batch[i-1].Ts {
			monotonic = false
			break
		}
	}
	if monotonic {
		return batch
	}

	out := make([]common.ParsedMessage, len(batch))
	copy(out, batch)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Ts != out[j].Ts {
			return out[i].Ts < out[j].Ts
		}
		var pi, pj string
		if out[i].PlatformMessageID != nil {
			pi = *out[i].PlatformMessageID
		}
		if out[j].PlatformMessageID != nil {
			pj = *out[j].PlatformMessageID
		}
		return pi < pj
	})
	return out
}
