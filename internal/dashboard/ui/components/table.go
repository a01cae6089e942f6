package components

import (
	"fmt"
	"html/template"
)

// ColumnConfig configures one table header cell.
type ColumnConfig struct {
	Header string
	Center bool
	NoWrap bool
}

// TableStart opens a responsive, striped, hoverable table with the given columns.
func TableStart(columns []ColumnConfig) string {
	html := `<div class="table-responsive"><table class="table table-striped table-hover align-middle">
    <thead>
        <tr>`
	for _, col := range columns {
		class := ""
		switch {
		case col.Center:
			class = ` class="text-center text-nowrap"`
		case col.NoWrap:
			class = ` class="text-nowrap"`
		}
		html += fmt.Sprintf(`<th%s>%s</th>`, class, template.HTMLEscapeString(col.Header))
	}
	html += `
        </tr>
    </thead>
    <tbody>`
	return html
}

// TableEnd closes a table opened with TableStart.
func TableEnd() string {
	return `    </tbody>
</table></div>`
}

// TableRow renders one row from pre-built (already HTML-safe) cells.
func TableRow(cells []string) string {
	html := "<tr>"
	for _, cell := range cells {
		html += fmt.Sprintf("<td>%s</td>", cell)
	}
	html += "</tr>"
	return html
}

// EmptyTableMessage renders an info alert in place of an empty table.
func EmptyTableMessage(message string) string {
	return fmt.Sprintf(`<div class="alert alert-info text-center">
    <i class="bi bi-info-circle me-2"></i>%s
</div>`, template.HTMLEscapeString(message))
}
