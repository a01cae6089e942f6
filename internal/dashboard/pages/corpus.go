package pages

import (
	"context"
	"fmt"

	"github.com/chatlab/corpus/internal/analytics"
	"github.com/chatlab/corpus/internal/boundary"
	"github.com/chatlab/corpus/internal/corpusstore"
	"github.com/chatlab/corpus/internal/dashboard/ui"
	"github.com/chatlab/corpus/internal/dashboard/ui/components"
)

// RenderCorpusDetail renders one corpus's analytics: activity ranking,
// Dragon King, monologue streaks, repeat-chain hot content, catchphrases,
// and the session/burst summary, with links out to the chart routes.
func RenderCorpusDetail(ctx context.Context, api *boundary.API, corpusID string, f analytics.TimeFilter) (string, error) {
	corpora, err := api.SessionsList(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list corpora: %w", err)
	}
	var corpus *corpusstore.Corpus
	for i := range corpora {
		if corpora[i].ID == corpusID {
			corpus = &corpora[i]
			break
		}
	}
	if corpus == nil {
		return "", fmt.Errorf("corpus %q not found", corpusID)
	}

	members, err := api.CorpusMembers(ctx, corpusID)
	if err != nil {
		return "", fmt.Errorf("failed to list members: %w", err)
	}
	messageCount, err := api.CorpusMessageCount(ctx, corpusID, f)
	if err != nil {
		return "", fmt.Errorf("failed to count messages: %w", err)
	}
	activity, err := api.AnalyticsActivity(ctx, corpusID, f)
	if err != nil {
		return "", fmt.Errorf("failed to rank activity: %w", err)
	}
	dragonKing, err := api.AnalyticsDragonKing(ctx, corpusID, f, nil)
	if err != nil {
		return "", fmt.Errorf("failed to compute dragon king: %w", err)
	}
	streaks, maxCombo, err := api.AnalyticsMonologueStreaks(ctx, corpusID, f, analytics.DefaultStreakMinLength, analytics.DefaultStreakIdleGap)
	if err != nil {
		return "", fmt.Errorf("failed to compute monologue streaks: %w", err)
	}
	chains, err := api.AnalyticsRepeatChains(ctx, corpusID, f, analytics.DefaultChainIdleGapSeconds)
	if err != nil {
		return "", fmt.Errorf("failed to compute repeat chains: %w", err)
	}
	catchphrases, err := api.AnalyticsCatchphrases(ctx, corpusID, f, analytics.DefaultCatchphraseCount, analytics.DefaultCatchphraseMinLen, analytics.DefaultCatchphraseMaxLen)
	if err != nil {
		return "", fmt.Errorf("failed to compute catchphrases: %w", err)
	}
	sessions, err := api.AnalyticsSessions(ctx, corpusID, f, analytics.DefaultStreakIdleGap)
	if err != nil {
		return "", fmt.Errorf("failed to summarize sessions: %w", err)
	}

	content := ui.ContainerStart()
	content += fmt.Sprintf(`<h3 class="mb-3">%s <small class="text-muted">%s</small></h3>`, htmlEscape(corpus.Name), htmlEscape(corpus.Platform))

	content += ui.Row(
		ui.Column("col-md-3", components.StatCard(fmt.Sprintf("%d", len(members)), "Members", "people-fill", "primary")) +
			ui.Column("col-md-3", components.StatCard(fmt.Sprintf("%d", messageCount), "Messages", "chat-dots-fill", "info")) +
			ui.Column("col-md-3", components.StatCard(fmt.Sprintf("%d", sessions.SessionCount), "Sessions", "clock-history", "success")) +
			ui.Column("col-md-3", components.StatCard(fmt.Sprintf("%.1f", sessions.MeanLength), "Mean session length (messages)", "hourglass-split", "warning")),
	)

	content += ui.CardStartWithAction("Activity Ranking", "bar-chart-fill", fmt.Sprintf("/dashboard/corpus/%s/chart/activity", corpusID), "Open chart")
	content += renderActivityTable(activity)
	content += ui.CardEnd()

	content += ui.CardStartWithAction("Dragon King", "trophy-fill", fmt.Sprintf("/dashboard/corpus/%s/chart/dragonking", corpusID), "Open chart")
	content += renderDragonKingTable(dragonKing)
	content += ui.CardEnd()

	content += ui.CardStartWithAction("Monologue Streaks", "chat-left-text-fill", fmt.Sprintf("/dashboard/corpus/%s/chart/streaks", corpusID), "Open chart")
	content += renderStreaksTable(streaks, maxCombo)
	content += ui.CardEnd()

	content += ui.CardStartWithAction("Repeat Chains", "arrow-repeat", fmt.Sprintf("/dashboard/corpus/%s/chart/chainlengths", corpusID), "Open chart")
	content += renderRepeatChainTable(chains)
	content += ui.CardEnd()

	content += ui.CardStart("Catchphrases", "quote")
	content += renderCatchphrasesTable(catchphrases)
	content += ui.CardEnd()

	content += ui.CardStartWithAction("Hourly / Weekday Heatmap", "grid-3x3-gap-fill", fmt.Sprintf("/dashboard/corpus/%s/chart/heatmap", corpusID), "Open chart")
	content += fmt.Sprintf(`<p class="text-muted mb-0">Longest idle gap: %ds · Longest session: #%d</p>`, sessions.LongestIdleGap, sessions.LongestSessionID)
	content += ui.CardEnd()

	content += ui.ContainerEnd()
	return ui.Header("ChatLab Dashboard — "+corpus.Name) + ui.NavbarAndBody("/dashboard", content) + ui.Footer(), nil
}

func renderActivityTable(entries []analytics.ActivityEntry) string {
	if len(entries) == 0 {
		return components.EmptyTableMessage("No messages in this time range.")
	}
	html := components.TableStart([]components.ColumnConfig{
		{Header: "Member", NoWrap: true},
		{Header: "Messages", Center: true},
		{Header: "Share", Center: true},
	})
	for _, e := range entries {
		html += components.TableRow([]string{
			htmlEscape(e.Name),
			fmt.Sprintf("%d", e.MessageCount),
			fmt.Sprintf("%.1f%%", 100*e.Percentage),
		})
	}
	html += components.TableEnd()
	return html
}

func renderDragonKingTable(result analytics.DragonKingResult) string {
	if len(result.Entries) == 0 {
		return components.EmptyTableMessage("No days with messages in this time range.")
	}
	html := components.TableStart([]components.ColumnConfig{
		{Header: "Member", NoWrap: true},
		{Header: "Days Won", Center: true},
		{Header: "Share", Center: true},
	})
	for _, e := range result.Entries {
		share := 0.0
		if result.TotalDays > 0 {
			share = 100 * float64(e.DaysWon) / float64(result.TotalDays)
		}
		html += components.TableRow([]string{
			htmlEscape(e.Name),
			fmt.Sprintf("%d", e.DaysWon),
			fmt.Sprintf("%.1f%%", share),
		})
	}
	html += components.TableEnd()
	return html
}

func renderStreaksTable(entries []analytics.StreakEntry, maxCombo *analytics.MaxComboRecord) string {
	if len(entries) == 0 {
		return components.EmptyTableMessage("No monologue streaks found in this time range.")
	}
	html := ""
	if maxCombo != nil {
		html += components.AlertWithIcon(
			fmt.Sprintf("All-time combo record: %d consecutive messages (member %d)", maxCombo.ComboLength, maxCombo.MemberID),
			"trophy", "warning")
	}
	html += components.TableStart([]components.ColumnConfig{
		{Header: "Member", NoWrap: true},
		{Header: "Total Streaks", Center: true},
		{Header: "Low (3-4)", Center: true},
		{Header: "Mid (5-9)", Center: true},
		{Header: "High (10+)", Center: true},
		{Header: "Max Combo", Center: true},
	})
	for _, e := range entries {
		html += components.TableRow([]string{
			htmlEscape(e.Name),
			fmt.Sprintf("%d", e.TotalStreaks),
			fmt.Sprintf("%d", e.LowStreak),
			fmt.Sprintf("%d", e.MidStreak),
			fmt.Sprintf("%d", e.HighStreak),
			fmt.Sprintf("%d", e.MaxCombo),
		})
	}
	html += components.TableEnd()
	return html
}

func renderRepeatChainTable(result analytics.RepeatChainResult) string {
	if len(result.HotContents) == 0 {
		return components.EmptyTableMessage("No repeat chains found in this time range.")
	}
	html := components.TableStart([]components.ColumnConfig{
		{Header: "Content", NoWrap: true},
		{Header: "Originator", NoWrap: true},
		{Header: "Times Used", Center: true},
		{Header: "Max Chain Length", Center: true},
	})
	for _, hc := range result.HotContents {
		html += components.TableRow([]string{
			htmlEscape(hc.Content),
			htmlEscape(hc.OriginatorName),
			fmt.Sprintf("%d", hc.Count),
			fmt.Sprintf("%d", hc.MaxChainLength),
		})
	}
	html += components.TableEnd()
	return html
}

func renderCatchphrasesTable(members []analytics.CatchphraseMember) string {
	if len(members) == 0 {
		return components.EmptyTableMessage("No catchphrases found in this time range.")
	}
	html := components.TableStart([]components.ColumnConfig{
		{Header: "Member", NoWrap: true},
		{Header: "Catchphrases", NoWrap: false},
	})
	for _, m := range members {
		phrases := ""
		for _, p := range m.Catchphrases {
			phrases += components.BadgeWithIcon(fmt.Sprintf("%s (%d)", p.Content, p.Count), "quote", "secondary") + " "
		}
		html += components.TableRow([]string{htmlEscape(m.Name), phrases})
	}
	html += components.TableEnd()
	return html
}
