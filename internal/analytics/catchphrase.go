package analytics

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/width"

	"github.com/chatlab/corpus/internal/corpusstore"
)

// Catchphrase defaults from spec.md §4.6.
const (
	DefaultCatchphraseCount  = 5
	DefaultCatchphraseMinLen = 2
	DefaultCatchphraseMaxLen = 30
)

// Catchphrase is one normalized text message and how often a member used it.
type Catchphrase struct {
	Content string
	Count   int
}

// CatchphraseMember groups one member's top catchphrases.
type CatchphraseMember struct {
	MemberID     int64
	Name         string
	Catchphrases []Catchphrase
}

// Catchphrases returns, per member, up to k highest-frequency text messages
// after whitespace normalization, excluding ones shorter than minLen or
// longer than maxLen characters, ties broken by most-recent use (spec.md
// §4.6 Catchphrase analysis). k/minLen/maxLen <= 0 select the spec defaults.
func Catchphrases(ctx context.Context, store *corpusstore.Store, corpusID string, f TimeFilter, k, minLen, maxLen int) ([]CatchphraseMember, error) {
	if k <= 0 {
		k = DefaultCatchphraseCount
	}
	if minLen <= 0 {
		minLen = DefaultCatchphraseMinLen
	}
	if maxLen <= 0 {
		maxLen = DefaultCatchphraseMaxLen
	}

	rows, err := fetchTextMessages(ctx, store, corpusID, f)
	if err != nil {
		return nil, err
	}

	type phraseStat struct {
		count  int
		lastTs int64
	}
	perMember := make(map[int64]map[string]*phraseStat)

	for _, r := range rows {
		norm := normalizeWhitespace(r.content)
		if len([]rune(norm)) < minLen || len([]rune(norm)) > maxLen {
			continue
		}
		phrases := perMember[r.senderID]
		if phrases == nil {
			phrases = make(map[string]*phraseStat)
			perMember[r.senderID] = phrases
		}
		st := phrases[norm]
		if st == nil {
			st = &phraseStat{}
			phrases[norm] = st
		}
		st.count++
		if r.ts > st.lastTs {
			st.lastTs = r.ts
		}
	}

	names, err := memberNames(ctx, store, corpusID)
	if err != nil {
		return nil, err
	}

	out := make([]CatchphraseMember, 0, len(perMember))
	for memberID, phrases := range perMember {
		list := make([]Catchphrase, 0, len(phrases))
		type ranked struct {
			content string
			stat    *phraseStat
		}
		rankedList := make([]ranked, 0, len(phrases))
		for content, st := range phrases {
			rankedList = append(rankedList, ranked{content: content, stat: st})
		}
		sort.Slice(rankedList, func(i, j int) bool {
			if rankedList[i].stat.count != rankedList[j].stat.count {
				return rankedList[i].stat.count > rankedList[j].stat.count
			}
			return rankedList[i].stat.lastTs > rankedList[j].stat.lastTs
		})
		if len(rankedList) > k {
			rankedList = rankedList[:k]
		}
		for _, r := range rankedList {
			list = append(list, Catchphrase{Content: r.content, Count: r.stat.count})
		}
		out = append(out, CatchphraseMember{MemberID: memberID, Name: names[memberID], Catchphrases: list})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })

	return out, nil
}

// normalizeWhitespace collapses runs of whitespace to a single space,
// trims the ends, and folds fullwidth CJK variants of ASCII characters to
// their halfwidth form (width.Narrow), so "ｈｉ" and "hi" sent from
// different clients count as the same catchphrase. Case is left intact.
// Only Catchphrases uses this form; RepeatChains compares text after
// strings.TrimSpace alone.
func normalizeWhitespace(s string) string {
	fields := strings.Fields(s)
	joined := strings.Join(fields, " ")
	return width.Narrow.String(joined)
}
