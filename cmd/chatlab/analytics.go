package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chatlab/corpus/internal/analytics"
)

func analyticsCmd() *cobra.Command {
	var corpusID string
	var startTs, endTs int64
	var memberID int64

	cmd := &cobra.Command{
		Use:   "analytics <kind>",
		Short: "Run an analytics query against a corpus (activity, dragonking, streaks, repeatchain, catchphrases, sessions, heatmap, namehistory)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if corpusID == "" {
				return fmt.Errorf("--corpus is required")
			}
			f := analytics.TimeFilter{}
			if startTs != 0 {
				f.StartTs = &startTs
			}
			if endTs != 0 {
				f.EndTs = &endTs
			}
			return runAnalytics(args[0], corpusID, f, memberID)
		},
	}
	cmd.Flags().StringVar(&corpusID, "corpus", "", "corpus id (required)")
	cmd.Flags().Int64Var(&startTs, "start-ts", 0, "filter: messages at or after this unix timestamp")
	cmd.Flags().Int64Var(&endTs, "end-ts", 0, "filter: messages at or before this unix timestamp")
	cmd.Flags().Int64Var(&memberID, "member", 0, "member id (namehistory only)")
	return cmd
}

func runAnalytics(kind, corpusID string, f analytics.TimeFilter, memberID int64) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx := context.Background()

	switch kind {
	case "activity":
		entries, err := rt.api.AnalyticsActivity(ctx, corpusID, f)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%-20s %6d  %5.1f%%\n", e.Name, e.MessageCount, 100*e.Percentage)
		}

	case "dragonking":
		result, err := rt.api.AnalyticsDragonKing(ctx, corpusID, f, rt.cfg.ResolveTimezone())
		if err != nil {
			return err
		}
		for _, e := range result.Entries {
			fmt.Printf("%-20s %6d days won\n", e.Name, e.DaysWon)
		}
		fmt.Printf("(%d days total)\n", result.TotalDays)

	case "streaks":
		entries, combo, err := rt.api.AnalyticsMonologueStreaks(ctx, corpusID, f, analytics.DefaultStreakMinLength, analytics.DefaultStreakIdleGap)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%-20s total=%-4d max=%-4d low=%-4d mid=%-4d high=%-4d\n",
				e.Name, e.TotalStreaks, e.MaxCombo, e.LowStreak, e.MidStreak, e.HighStreak)
		}
		if combo != nil {
			fmt.Printf("all-time longest streak: member %d, %d messages, started at %d\n", combo.MemberID, combo.ComboLength, combo.StartTs)
		}

	case "repeatchain":
		result, err := rt.api.AnalyticsRepeatChains(ctx, corpusID, f, analytics.DefaultChainIdleGapSeconds)
		if err != nil {
			return err
		}
		for _, hc := range result.HotContents {
			fmt.Printf("%-30q by %-20s x%-4d (max chain %d, last at %d)\n", hc.Content, hc.OriginatorName, hc.Count, hc.MaxChainLength, hc.LastTs)
		}

	case "catchphrases":
		members, err := rt.api.AnalyticsCatchphrases(ctx, corpusID, f,
			analytics.DefaultCatchphraseCount, analytics.DefaultCatchphraseMinLen, analytics.DefaultCatchphraseMaxLen)
		if err != nil {
			return err
		}
		for _, m := range members {
			fmt.Printf("%s:\n", m.Name)
			for _, c := range m.Catchphrases {
				fmt.Printf("  %-30q x%d\n", c.Content, c.Count)
			}
		}

	case "sessions":
		summary, err := rt.api.AnalyticsSessions(ctx, corpusID, f, analytics.DefaultStreakIdleGap)
		if err != nil {
			return err
		}
		fmt.Printf("sessions=%d mean=%.1f median=%.1f longest-idle-gap=%ds\n",
			summary.SessionCount, summary.MeanLength, summary.MedianLength, summary.LongestIdleGap)

	case "heatmap":
		cells, err := rt.api.AnalyticsHeatmap(ctx, corpusID, f, rt.cfg.ResolveTimezone())
		if err != nil {
			return err
		}
		for _, c := range cells {
			fmt.Printf("%-10s %02d:00  %d\n", c.Weekday, c.Hour, c.Count)
		}

	case "namehistory":
		if memberID == 0 {
			return fmt.Errorf("--member is required for namehistory")
		}
		intervals, err := rt.api.AnalyticsNameHistory(ctx, corpusID, memberID)
		if err != nil {
			return err
		}
		for _, iv := range intervals {
			if iv.EndTs == nil {
				fmt.Printf("%-20s since %d (current)\n", iv.Name, iv.StartTs)
			} else {
				fmt.Printf("%-20s %d–%d\n", iv.Name, iv.StartTs, *iv.EndTs)
			}
		}

	default:
		return fmt.Errorf("unknown analytics kind %q", kind)
	}
	return nil
}
