// Package components renders the small reusable HTML fragments (stat
// cards, tables, badges, pagination) used across dashboard pages, adapted
// from debuger/ui/components' fmt.Sprintf-based builders.
package components

import (
	"fmt"
	"html/template"
)

// StatCard renders a plain statistics card.
func StatCard(value, label, icon, color string) string {
	return fmt.Sprintf(`
<div class="card text-center h-100 border-%s">
    <div class="card-body d-flex flex-column justify-content-center">
        <h2 class="card-title text-%s mb-2" style="font-size: 2.25rem; font-weight: bold;">%s</h2>
        <p class="card-text mb-0"><i class="bi bi-%s"></i> %s</p>
    </div>
</div>`, color, color, template.HTMLEscapeString(value), icon, template.HTMLEscapeString(label))
}

// StatCardWithLink renders a statistics card with a "view details" link.
func StatCardWithLink(value, label, icon, color, linkURL, linkText string) string {
	return fmt.Sprintf(`
<div class="card text-center h-100 border-%s">
    <div class="card-body d-flex flex-column justify-content-center">
        <h2 class="card-title text-%s mb-2" style="font-size: 2.25rem; font-weight: bold;">%s</h2>
        <p class="card-text mb-3"><i class="bi bi-%s"></i> %s</p>
        <a href="%s" class="btn btn-sm btn-outline-%s mt-auto">%s</a>
    </div>
</div>`, color, color, template.HTMLEscapeString(value), icon, template.HTMLEscapeString(label), linkURL, color, linkText)
}

// LinkCard renders a clickable card linking to another dashboard page.
func LinkCard(title, content, icon, linkURL string) string {
	return fmt.Sprintf(`
<a href="%s" class="card text-decoration-none text-dark h-100">
    <div class="card-body text-center">
        <div class="mb-3" style="font-size: 2.5rem;">%s</div>
        <h6 class="card-title">%s</h6>
        <p class="card-text text-muted small">%s</p>
    </div>
</a>`, linkURL, icon, template.HTMLEscapeString(title), template.HTMLEscapeString(content))
}
