package components

import (
	"fmt"
	"html/template"
)

// Badge renders a Bootstrap badge.
func Badge(text, variant string) string {
	return fmt.Sprintf(`<span class="badge bg-%s">%s</span>`, variant, template.HTMLEscapeString(text))
}

// BadgeWithIcon renders a badge with a leading bootstrap-icon.
func BadgeWithIcon(text, icon, variant string) string {
	return fmt.Sprintf(`<span class="badge bg-%s"><i class="bi bi-%s me-1"></i>%s</span>`, variant, icon, template.HTMLEscapeString(text))
}

// CountBadge renders a plain count badge.
func CountBadge(count int, variant string) string {
	return fmt.Sprintf(`<span class="badge bg-%s">%d</span>`, variant, count)
}

// PlatformBadge colors a corpus's source platform.
func PlatformBadge(platform string) string {
	variant := "secondary"
	switch platform {
	case "line":
		variant = "success"
	case "wechat", "qq":
		variant = "info"
	case "discord":
		variant = "primary"
	case "telegram":
		variant = "info"
	}
	return Badge(platform, variant)
}

// BoolBadge renders a Yes/No badge.
func BoolBadge(value bool) string {
	if value {
		return Badge("Yes", "success")
	}
	return Badge("No", "secondary")
}

// PartialBadge flags a corpus whose import ended early.
func PartialBadge(partial bool) string {
	if partial {
		return BadgeWithIcon("Partial", "exclamation-triangle", "warning")
	}
	return BadgeWithIcon("Complete", "check-circle", "success")
}
