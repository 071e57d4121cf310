package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/folio-site/folio/internal/models"
)

// Color constants for the board theme
const (
	// Base Colors
	ColorCardBackground = "#1B1530" // Dark purple
	ColorBorder         = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2"
	ColorSecondaryText = "#B1B8C7"
	ColorDisabledText  = "#6D7383"
	ColorHelpText      = "240"

	// Accent Colors
	ColorAccentMain   = "#7C3AED" // Selected lane and card borders
	ColorAccentBright = "#A78BFA" // Headers, highlights

	// State Colors
	ColorError   = "#EF4444"
	ColorSuccess = "#22C55E"
	ColorWarning = "#F59E0B"
)

// priorityColor maps a ticket priority to its badge color
func priorityColor(p models.Priority) lipgloss.Color {
	switch p {
	case models.PriorityHigh:
		return lipgloss.Color(ColorError)
	case models.PriorityMedium:
		return lipgloss.Color(ColorWarning)
	default:
		return lipgloss.Color(ColorSecondaryText)
	}
}

// priorityBadge is the short marker shown on cards
func priorityBadge(p models.Priority) string {
	label := map[models.Priority]string{
		models.PriorityHigh:   "▲ high",
		models.PriorityMedium: "■ med",
		models.PriorityLow:    "▼ low",
	}[p]
	if label == "" {
		label = string(p)
	}
	return lipgloss.NewStyle().Foreground(priorityColor(p)).Render(label)
}
