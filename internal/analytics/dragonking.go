package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/chatlab/corpus/internal/corpusstore"
)

// DragonKingEntry is one member's count of days won.
type DragonKingEntry struct {
	MemberID int64
	Name     string
	DaysWon  int
}

// DragonKingResult is the per-day-top-sender tally (spec.md §4.6 Dragon
// King analysis).
type DragonKingResult struct {
	Entries   []DragonKingEntry
	TotalDays int
}

// DragonKing iterates every distinct calendar day (in loc) within the
// filter, finds each day's top sender (ties broken by earliest message
// that day), and tallies days won per member. The time filter is pushed
// into the message query; day bucketing itself is necessarily done in Go
// since SQLite has no local-timezone calendar function.
func DragonKing(ctx context.Context, store *corpusstore.Store, corpusID string, f TimeFilter, loc *time.Location) (DragonKingResult, error) {
	if loc == nil {
		loc = time.UTC
	}

	rows, err := fetchAllMessages(ctx, store, corpusID, f)
	if err != nil {
		return DragonKingResult{}, err
	}

	type dayWinner struct {
		senderID  int64
		earliest  int64
		countHigh int
	}
	days := make(map[string]map[int64]int) // day key -> sender -> count
	dayEarliest := make(map[string]map[int64]int64)
	var dayOrder []string
	seenDay := make(map[string]bool)

	for _, m := range rows {
		key := time.Unix(m.ts, 0).In(loc).Format("2006-01-02")
		if !seenDay[key] {
			seenDay[key] = true
			dayOrder = append(dayOrder, key)
			days[key] = make(map[int64]int)
			dayEarliest[key] = make(map[int64]int64)
		}
		days[key][m.senderID]++
		if existing, ok := dayEarliest[key][m.senderID]; !ok || m.ts < existing {
			dayEarliest[key][m.senderID] = m.ts
		}
	}

	wonBy := make(map[int64]int)
	for _, key := range dayOrder {
		counts := days[key]
		var best dayWinner
		best.senderID = -1
		for sender, count := range counts {
			earliest := dayEarliest[key][sender]
			switch {
			case best.senderID == -1,
				count > best.countHigh,
				count == best.countHigh && earliest < best.earliest:
				best = dayWinner{senderID: sender, earliest: earliest, countHigh: count}
			}
		}
		if best.senderID != -1 {
			wonBy[best.senderID]++
		}
	}

	names, err := memberNames(ctx, store, corpusID)
	if err != nil {
		return DragonKingResult{}, err
	}

	entries := make([]DragonKingEntry, 0, len(wonBy))
	for memberID, won := range wonBy {
		entries = append(entries, DragonKingEntry{MemberID: memberID, Name: names[memberID], DaysWon: won})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DaysWon != entries[j].DaysWon {
			return entries[i].DaysWon > entries[j].DaysWon
		}
		return entries[i].MemberID < entries[j].MemberID
	})

	return DragonKingResult{Entries: entries, TotalDays: len(dayOrder)}, nil
}
