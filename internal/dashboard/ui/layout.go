// Package ui renders the dashboard's HTML shell: header, navbar, cards,
// and containers, built the way debuger/ui built Agentize's debug pages —
// plain fmt.Sprintf string-building over a Bootstrap CDN, not html/template.
package ui

import (
	"fmt"
	"html/template"
)

// Header generates the HTML head with the Bootstrap CDN.
func Header(title string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.2/dist/css/bootstrap.min.css" rel="stylesheet" crossorigin="anonymous">
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap-icons@1.11.1/font/bootstrap-icons.css">
    <style>%s</style>
</head>
<body>`, template.HTMLEscapeString(title), Styles())
}

// Footer generates the HTML footer with the Bootstrap JS bundle.
func Footer() string {
	return `
    <script src="https://cdn.jsdelivr.net/npm/bootstrap@5.3.2/dist/js/bootstrap.bundle.min.js" crossorigin="anonymous"></script>
</body>
</html>`
}

// NavbarAndBody lays the navbar over the page content.
func NavbarAndBody(currentPage, content string) string {
	return Navbar(currentPage) + content
}

// ContainerStart opens the page's main container.
func ContainerStart() string {
	return `<div class="container-fluid px-4 py-4">`
}

// ContainerEnd closes the page's main container.
func ContainerEnd() string {
	return `</div>`
}

// CardStart opens a card with a header title and icon.
func CardStart(title, icon string) string {
	return fmt.Sprintf(`<div class="card mb-4">
    <div class="card-header">
        <h5 class="mb-0"><i class="bi bi-%s me-2"></i>%s</h5>
    </div>
    <div class="card-body">`, icon, template.HTMLEscapeString(title))
}

// CardStartWithAction opens a card with a header action button (e.g. "open a chart").
func CardStartWithAction(title, icon, actionURL, actionText string) string {
	return fmt.Sprintf(`<div class="card mb-4">
    <div class="card-header d-flex justify-content-between align-items-center">
        <h5 class="mb-0"><i class="bi bi-%s me-2"></i>%s</h5>
        <a href="%s" class="btn btn-sm btn-light" target="_blank" rel="noopener">%s</a>
    </div>
    <div class="card-body">`, icon, template.HTMLEscapeString(title), actionURL, actionText)
}

// CardEnd closes a card.
func CardEnd() string {
	return `    </div>
</div>`
}

// Row opens a Bootstrap row of equal-height columns.
func Row(content string) string {
	return fmt.Sprintf(`<div class="row g-4 mb-4">%s</div>`, content)
}

// Column wraps content in a Bootstrap column of the given size class.
func Column(size, content string) string {
	return fmt.Sprintf(`<div class="%s">%s</div>`, size, content)
}
