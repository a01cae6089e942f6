package pages

import (
	"context"
	"fmt"

	"github.com/chatlab/corpus/internal/boundary"
	"github.com/chatlab/corpus/internal/dashboard/ui"
	"github.com/chatlab/corpus/internal/dashboard/ui/components"
)

// RenderOverview renders the corpus catalog: one row per imported corpus,
// with select/delete actions and a link into its detail page.
func RenderOverview(ctx context.Context, api *boundary.API) (string, error) {
	corpora, err := api.SessionsList(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list corpora: %w", err)
	}
	active, err := api.SessionsActive(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read active corpus: %w", err)
	}

	content := ui.ContainerStart()
	content += ui.Row(
		ui.Column("col-md-4", components.StatCard(fmt.Sprintf("%d", len(corpora)), "Corpora", "collection", "primary")) +
			ui.Column("col-md-4", components.LinkCard("Import a chat log", "Start a new import job from an export file", "cloud-upload", "/dashboard/import")) +
			ui.Column("col-md-4", components.LinkCard("Run a query", "Inspect the schema or run read-only SQL", "terminal", "/dashboard/query")),
	)

	content += ui.CardStart("Corpora", "collection")
	if len(corpora) == 0 {
		content += components.EmptyTableMessage("No corpora imported yet.")
	} else {
		content += components.TableStart([]components.ColumnConfig{
			{Header: "Name", NoWrap: true},
			{Header: "Platform", Center: true},
			{Header: "Chat Type", Center: true},
			{Header: "Status", Center: true},
			{Header: "Active", Center: true},
			{Header: "Actions", Center: true, NoWrap: true},
		})
		for _, c := range corpora {
			activeCell := ""
			if c.ID == active {
				activeCell = components.BadgeWithIcon("Selected", "check-circle-fill", "success")
			}
			actions := fmt.Sprintf(`<a href="/dashboard/corpus/%s" class="btn btn-sm btn-outline-primary me-1">Open</a>`, c.ID)
			if c.ID != active {
				actions += fmt.Sprintf(`<form method="post" action="/dashboard/corpus/%s/select" class="d-inline">
					<button type="submit" class="btn btn-sm btn-outline-secondary me-1">Select</button>
				</form>`, c.ID)
			}
			actions += fmt.Sprintf(`<form method="post" action="/dashboard/corpus/%s/delete" class="d-inline" onsubmit="return confirm('Delete this corpus?');">
				<button type="submit" class="btn btn-sm btn-outline-danger">Delete</button>
			</form>`, c.ID)

			content += components.TableRow([]string{
				fmt.Sprintf(`<a href="/dashboard/corpus/%s">%s</a>`, c.ID, htmlEscape(c.Name)),
				components.PlatformBadge(c.Platform),
				htmlEscape(string(c.ChatType)),
				components.PartialBadge(c.Partial),
				activeCell,
				actions,
			})
		}
		content += components.TableEnd()
	}
	content += ui.CardEnd()
	content += ui.ContainerEnd()

	return ui.Header("ChatLab Dashboard") + ui.NavbarAndBody("/dashboard", content) + ui.Footer(), nil
}
