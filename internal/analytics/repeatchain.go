package analytics

import (
	"context"
	"sort"
	"strings"

	"github.com/chatlab/corpus/internal/corpusstore"
)

// DefaultChainIdleGapSeconds is spec.md §4.6's repeat-chain default gap.
const DefaultChainIdleGapSeconds = 600

// RepeatChainResult is the full repeat-chain analysis output.
type RepeatChainResult struct {
	Originators             map[int64]int
	Initiators              map[int64]int
	Breakers                map[int64]int
	OriginatorRates         map[int64]float64
	InitiatorRates          map[int64]float64
	BreakerRates            map[int64]float64
	ChainLengthDistribution map[int]int
	HotContents             []HotContent
}

// HotContent is one of the top-10 chains by length.
type HotContent struct {
	Content        string
	OriginatorName string
	Count          int
	MaxChainLength int
	LastTs         int64
}

type chain struct {
	content string
	senders []int64
	startTs int64
	lastTs  int64
}

// RepeatChains finds maximal sequences of distinct senders each repeating
// the same normalized text (trim + case-sensitive), consecutive pairs
// within chainIdleGap seconds, length >= 2 (spec.md §4.6 Repeat-chain
// analysis). chainIdleGap <= 0 selects the spec default.
func RepeatChains(ctx context.Context, store *corpusstore.Store, corpusID string, f TimeFilter, chainIdleGap int64) (RepeatChainResult, error) {
	if chainIdleGap <= 0 {
		chainIdleGap = DefaultChainIdleGapSeconds
	}

	rows, err := fetchTextMessages(ctx, store, corpusID, f)
	if err != nil {
		return RepeatChainResult{}, err
	}

	messageTotals := make(map[int64]int)
	for _, r := range rows {
		messageTotals[r.senderID]++
	}

	originators := make(map[int64]int)
	initiators := make(map[int64]int)
	breakers := make(map[int64]int)
	lengthDist := make(map[int]int)

	var completed []chain

	var cur *chain

	closeChain := func(breakerSender int64, hasBreaker bool) {
		if cur == nil {
			return
		}
		if len(cur.senders) >= 2 {
			completed = append(completed, *cur)
			originators[cur.senders[0]]++
			initiators[cur.senders[1]]++
			lengthDist[len(cur.senders)]++
			if hasBreaker {
				breakers[breakerSender]++
			}
		}
		cur = nil
	}

	for _, r := range rows {
		norm := strings.TrimSpace(r.content)

		if cur != nil && norm == cur.content && r.ts-cur.lastTs <= chainIdleGap && !containsSender(cur.senders, r.senderID) {
			cur.senders = append(cur.senders, r.senderID)
			cur.lastTs = r.ts
			continue
		}

		// current run broke (different content, sender repeat, or gap too
		// large): if it ended as a real chain and this message's content
		// differs, this sender is the breaker.
		if cur != nil {
			broke := norm != cur.content
			closeChain(r.senderID, broke)
		}

		cur = &chain{content: norm, senders: []int64{r.senderID}, startTs: r.ts, lastTs: r.ts}
	}
	closeChain(0, false)

	// hotContents: aggregate per distinct content across all completed chains.
	type contentStat struct {
		count          int
		maxLen         int
		lastTs         int64
		originatorID   int64
	}
	byContent := make(map[string]*contentStat)
	for _, c := range completed {
		st := byContent[c.content]
		if st == nil {
			st = &contentStat{}
			byContent[c.content] = st
		}
		st.count++
		if len(c.senders) > st.maxLen {
			st.maxLen = len(c.senders)
			st.originatorID = c.senders[0]
		}
		if c.lastTs > st.lastTs {
			st.lastTs = c.lastTs
		}
	}

	names, err := memberNames(ctx, store, corpusID)
	if err != nil {
		return RepeatChainResult{}, err
	}

	hot := make([]HotContent, 0, len(byContent))
	for content, st := range byContent {
		hot = append(hot, HotContent{
			Content:        content,
			OriginatorName: names[st.originatorID],
			Count:          st.count,
			MaxChainLength: st.maxLen,
			LastTs:         st.lastTs,
		})
	}
	sort.Slice(hot, func(i, j int) bool {
		if hot[i].MaxChainLength != hot[j].MaxChainLength {
			return hot[i].MaxChainLength > hot[j].MaxChainLength
		}
		return hot[i].LastTs > hot[j].LastTs
	})
	if len(hot) > 10 {
		hot = hot[:10]
	}

	rate := func(counts map[int64]int) map[int64]float64 {
		rates := make(map[int64]float64, len(counts))
		for memberID, c := range counts {
			if total := messageTotals[memberID]; total > 0 {
				rates[memberID] = float64(c) / float64(total)
			}
		}
		return rates
	}

	return RepeatChainResult{
		Originators:             originators,
		Initiators:              initiators,
		Breakers:                breakers,
		OriginatorRates:         rate(originators),
		InitiatorRates:          rate(initiators),
		BreakerRates:            rate(breakers),
		ChainLengthDistribution: lengthDist,
		HotContents:             hot,
	}, nil
}

func containsSender(senders []int64, id int64) bool {
	for _, s := range senders {
		if s == id {
			return true
		}
	}
	return false
}
