package analytics

import (
	"context"
	"time"

	"github.com/chatlab/corpus/internal/corpusstore"
)

// HeatmapCell is one (weekday, hour) bucket's message count.
type HeatmapCell struct {
	Weekday time.Weekday
	Hour    int
	Count   int
}

// Heatmap buckets messages by local hour-of-day x weekday (SPEC_FULL.md
// §4.6 expansion): the natural generalization of Dragon King's per-day
// bucketizer to a finer-grained calendar view, timezone-aware the same way.
func Heatmap(ctx context.Context, store *corpusstore.Store, corpusID string, f TimeFilter, loc *time.Location) ([]HeatmapCell, error) {
	if loc == nil {
		loc = time.UTC
	}

	rows, err := fetchAllMessages(ctx, store, corpusID, f)
	if err != nil {
		return nil, err
	}

	counts := make(map[time.Weekday]map[int]int)
	for _, m := range rows {
		t := time.Unix(m.ts, 0).In(loc)
		wd := t.Weekday()
		if counts[wd] == nil {
			counts[wd] = make(map[int]int)
		}
		counts[wd][t.Hour()]++
	}

	cells := make([]HeatmapCell, 0, 7*24)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		for hour := 0; hour < 24; hour++ {
			if n := counts[wd][hour]; n > 0 {
				cells = append(cells, HeatmapCell{Weekday: wd, Hour: hour, Count: n})
			}
		}
	}
	return cells, nil
}
