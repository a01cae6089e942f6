package analytics

import (
	"context"
	"sort"

	"github.com/chatlab/corpus/internal/chaterr"
	"github.com/chatlab/corpus/internal/corpusstore"
)

// DefaultStreakMinLength and DefaultStreakIdleGap are spec.md §4.6's
// Monologue streak defaults (N = 3, idleGap = 300).
const (
	DefaultStreakMinLength = 3
	DefaultStreakIdleGap   = 300
)

// MaxComboRecord is the single all-time longest streak across the corpus.
type MaxComboRecord struct {
	MemberID    int64
	ComboLength int
	StartTs     int64
}

// StreakEntry buckets one member's streaks by length band.
type StreakEntry struct {
	MemberID    int64
	Name        string
	TotalStreaks int
	MaxCombo    int
	LowStreak   int // 3-4
	MidStreak   int // 5-9
	HighStreak  int // >= 10
}

// MonologueStreaks finds maximal runs of >= minLength consecutive
// same-sender messages, each consecutive pair within idleGap seconds
// (spec.md §4.6 Monologue streak analysis). minLength <= 0 and
// idleGap <= 0 select the spec defaults.
func MonologueStreaks(ctx context.Context, store *corpusstore.Store, corpusID string, f TimeFilter, minLength int, idleGap int64) ([]StreakEntry, *MaxComboRecord, error) {
	if minLength <= 0 {
		minLength = DefaultStreakMinLength
	}
	if idleGap <= 0 {
		idleGap = DefaultStreakIdleGap
	}

	rows, err := fetchAllMessages(ctx, store, corpusID, f)
	if err != nil {
		return nil, nil, err
	}

	type runStat struct {
		total, low, mid, high int
		maxCombo              int
	}
	stats := make(map[int64]*runStat)
	var record *MaxComboRecord

	flush := func(sender int64, length int, startTs int64) {
		if length < minLength {
			return
		}
		st := stats[sender]
		if st == nil {
			st = &runStat{}
			stats[sender] = st
		}
		st.total++
		if length > st.maxCombo {
			st.maxCombo = length
		}
		switch {
		case length >= 10:
			st.high++
		case length >= 5:
			st.mid++
		default:
			st.low++
		}
		if record == nil || length > record.ComboLength ||
			(length == record.ComboLength && startTs > record.StartTs) {
			record = &MaxComboRecord{MemberID: sender, ComboLength: length, StartTs: startTs}
		}
	}

	var curSender int64 = -1
	var curLen int
	var curStart, prevTs int64
	for i, m := range rows {
		if i == 0 || m.senderID != curSender || m.ts-prevTs > idleGap {
			if i > 0 {
				flush(curSender, curLen, curStart)
			}
			curSender = m.senderID
			curLen = 1
			curStart = m.ts
		} else {
			curLen++
		}
		prevTs = m.ts
	}
	if len(rows) > 0 {
		flush(curSender, curLen, curStart)
	}

	names, err := memberNames(ctx, store, corpusID)
	if err != nil {
		return nil, nil, err
	}

	entries := make([]StreakEntry, 0, len(stats))
	for memberID, st := range stats {
		entries = append(entries, StreakEntry{
			MemberID: memberID, Name: names[memberID],
			TotalStreaks: st.total, MaxCombo: st.maxCombo,
			LowStreak: st.low, MidStreak: st.mid, HighStreak: st.high,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalStreaks != entries[j].TotalStreaks {
			return entries[i].TotalStreaks > entries[j].TotalStreaks
		}
		return entries[i].MemberID < entries[j].MemberID
	})

	return entries, record, nil
}

// messageRow is the shared (sender, ts) shape for streak/heatmap analysis,
// spanning every message kind — unlike textRow, which is text-only.
type messageRow struct {
	senderID int64
	ts       int64
}

func fetchAllMessages(ctx context.Context, store *corpusstore.Store, corpusID string, f TimeFilter) ([]messageRow, error) {
	query := `SELECT sender_id, ts FROM message WHERE corpus_id = ?`
	args := []any{corpusID}
	query, args = appendTimeFilter(query, args, f)
	query += ` ORDER BY ts, id`

	db := store.DB()
	sqlRows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, chaterr.New(chaterr.KindInternal, "analytics.fetchAllMessages", err)
	}
	defer sqlRows.Close()

	var out []messageRow
	for sqlRows.Next() {
		var r messageRow
		if err := sqlRows.Scan(&r.senderID, &r.ts); err != nil {
			return nil, chaterr.New(chaterr.KindInternal, "analytics.fetchAllMessages", err)
		}
		out = append(out, r)
	}
	if err := sqlRows.Err(); err != nil {
		return nil, chaterr.New(chaterr.KindInternal, "analytics.fetchAllMessages", err)
	}
	return out, nil
}
