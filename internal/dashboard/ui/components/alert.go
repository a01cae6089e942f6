package components

import (
	"fmt"
	"html/template"
)

// AlertWithIcon renders a Bootstrap alert with a leading icon.
func AlertWithIcon(message, icon, variant string) string {
	return fmt.Sprintf(`<div class="alert alert-%s"><i class="bi bi-%s me-2"></i>%s</div>`,
		variant, icon, template.HTMLEscapeString(message))
}

// InfoAlert renders an info alert.
func InfoAlert(message string) string { return AlertWithIcon(message, "info-circle", "info") }

// DangerAlert renders a danger alert (used for surfaced errors).
func DangerAlert(message string) string { return AlertWithIcon(message, "x-circle", "danger") }
