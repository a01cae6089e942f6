package pages

import (
	"context"
	"fmt"

	"github.com/chatlab/corpus/internal/boundary"
	"github.com/chatlab/corpus/internal/dashboard/ui"
	"github.com/chatlab/corpus/internal/dashboard/ui/components"
)

// RenderSchema renders schema.get: one card per table, listing its columns.
func RenderSchema(ctx context.Context, api *boundary.API) (string, error) {
	tables, err := api.SchemaGet(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read schema: %w", err)
	}

	content := ui.ContainerStart()
	for _, t := range tables {
		content += ui.CardStart(t.Name, "table")
		content += components.TableStart([]components.ColumnConfig{
			{Header: "Column", NoWrap: true},
			{Header: "Type", Center: true},
			{Header: "Primary Key", Center: true},
		})
		for _, col := range t.Columns {
			content += components.TableRow([]string{
				htmlEscape(col.Name),
				htmlEscape(col.Type),
				components.BoolBadge(col.PK),
			})
		}
		content += components.TableEnd()
		content += ui.CardEnd()
	}
	content += ui.ContainerEnd()

	return ui.Header("ChatLab Dashboard — Schema") + ui.NavbarAndBody("/dashboard/schema", content) + ui.Footer(), nil
}
