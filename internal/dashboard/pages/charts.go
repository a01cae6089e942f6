package pages

import (
	"context"
	"fmt"

	"github.com/chatlab/corpus/internal/analytics"
	"github.com/chatlab/corpus/internal/boundary"
	"github.com/chatlab/corpus/internal/dashboard/charts"
)

// RenderChart dispatches to the matching go-echarts page for one of the
// dashboard's chart routes (spec.md SPEC_FULL note: "the heatmap analysis
// is a natural pairing with the go-echarts heatmap chart type").
func RenderChart(ctx context.Context, api *boundary.API, corpusID, kind string, f analytics.TimeFilter) (string, error) {
	corpora, err := api.SessionsList(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list corpora: %w", err)
	}
	name := corpusID
	for _, c := range corpora {
		if c.ID == corpusID {
			name = c.Name
			break
		}
	}

	switch kind {
	case "activity":
		entries, err := api.AnalyticsActivity(ctx, corpusID, f)
		if err != nil {
			return "", err
		}
		return charts.Activity(name, entries)
	case "dragonking":
		result, err := api.AnalyticsDragonKing(ctx, corpusID, f, nil)
		if err != nil {
			return "", err
		}
		return charts.DragonKing(name, result)
	case "streaks":
		entries, _, err := api.AnalyticsMonologueStreaks(ctx, corpusID, f, analytics.DefaultStreakMinLength, analytics.DefaultStreakIdleGap)
		if err != nil {
			return "", err
		}
		return charts.Streaks(name, entries)
	case "heatmap":
		cells, err := api.AnalyticsHeatmap(ctx, corpusID, f, nil)
		if err != nil {
			return "", err
		}
		return charts.Heatmap(name, cells)
	case "chainlengths":
		result, err := api.AnalyticsRepeatChains(ctx, corpusID, f, analytics.DefaultChainIdleGapSeconds)
		if err != nil {
			return "", err
		}
		return charts.RepeatChainLengths(name, result.ChainLengthDistribution)
	default:
		return "", fmt.Errorf("unknown chart kind %q", kind)
	}
}
