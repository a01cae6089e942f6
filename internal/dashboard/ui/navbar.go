package ui

import "fmt"

// NavItem is one top-nav entry.
type NavItem struct {
	URL  string
	Icon string
	Text string
}

// DefaultNavItems are the dashboard's fixed top-level sections.
func DefaultNavItems() []NavItem {
	return []NavItem{
		{"/dashboard", "speedometer2", "Overview"},
		{"/dashboard/query", "terminal", "Query"},
		{"/dashboard/schema", "table", "Schema"},
		{"/dashboard/import", "cloud-upload", "Import"},
	}
}

// Navbar renders the top nav bar, highlighting currentPage.
func Navbar(currentPage string) string {
	html := `<nav class="navbar navbar-expand-lg navbar-dark" style="background: linear-gradient(135deg, #2b5876 0%, #4e4376 100%);">
    <div class="container-fluid">
        <a class="navbar-brand fw-bold" href="/dashboard">
            <i class="bi bi-chat-square-text-fill me-2"></i>ChatLab
        </a>
        <button class="navbar-toggler" type="button" data-bs-toggle="collapse" data-bs-target="#navbarNav">
            <span class="navbar-toggler-icon"></span>
        </button>
        <div class="collapse navbar-collapse" id="navbarNav">
            <ul class="navbar-nav ms-auto">`

	for _, item := range DefaultNavItems() {
		active := ""
		if item.URL == currentPage {
			active = "active fw-bold"
		}
		html += fmt.Sprintf(`
                <li class="nav-item">
                    <a class="nav-link %s" href="%s"><i class="bi bi-%s me-1"></i>%s</a>
                </li>`, active, item.URL, item.Icon, item.Text)
	}

	html += `
            </ul>
        </div>
    </div>
</nav>`
	return html
}
