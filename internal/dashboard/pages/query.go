package pages

import (
	"fmt"

	"github.com/chatlab/corpus/internal/boundary"
	"github.com/chatlab/corpus/internal/dashboard/ui"
	"github.com/chatlab/corpus/internal/dashboard/ui/components"
)

// RenderQuery renders the query.sql console: a textarea posting to itself,
// and the last run's result table (or error) if sql/result is non-empty.
func RenderQuery(sql string, result *boundary.QueryResult, runErr error) (string, error) {
	content := ui.ContainerStart()
	content += ui.CardStart("Run a read-only query", "terminal")
	content += fmt.Sprintf(`<form method="post" action="/dashboard/query">
    <div class="mb-3">
        <textarea class="form-control font-monospace" name="sql" rows="4" placeholder="SELECT * FROM message LIMIT 10">%s</textarea>
    </div>
    <button type="submit" class="btn btn-primary"><i class="bi bi-play-fill me-1"></i>Run</button>
</form>`, htmlEscape(sql))
	content += ui.CardEnd()

	if runErr != nil {
		content += components.DangerAlert(runErr.Error())
	} else if result != nil {
		content += ui.CardStart(fmt.Sprintf("Result (%d rows, %s)", result.RowCount, result.Duration), "table")
		if result.Limited {
			content += components.AlertWithIcon(fmt.Sprintf("Result truncated to %d rows", result.RowCount), "exclamation-triangle", "warning")
		}
		columns := make([]components.ColumnConfig, 0, len(result.Columns))
		for _, c := range result.Columns {
			columns = append(columns, components.ColumnConfig{Header: c, NoWrap: true})
		}
		content += components.TableStart(columns)
		for _, row := range result.Rows {
			cells := make([]string, 0, len(row))
			for _, v := range row {
				cells = append(cells, htmlEscape(fmt.Sprintf("%v", v)))
			}
			content += components.TableRow(cells)
		}
		content += components.TableEnd()
		content += ui.CardEnd()
	}
	content += ui.ContainerEnd()

	return ui.Header("ChatLab Dashboard — Query") + ui.NavbarAndBody("/dashboard/query", content) + ui.Footer(), nil
}
