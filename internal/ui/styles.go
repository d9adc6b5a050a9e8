package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/factcheck/internal/results"
)

// Color palette - lime accent with semantic badge colors
const (
	ColorLime     = "154" // Primary accent
	ColorLimeDim  = "106" // Dimmed lime for inactive/borders
	ColorWhite    = "255" // Headers, important text
	ColorGray     = "245" // Secondary text, labels
	ColorDarkGray = "238" // Box borders, separators
	ColorRed      = "196" // Errors
	ColorYellow   = "220" // Warnings
	ColorGreen    = "34"  // success badge
	ColorSlate    = "244" // secondary badge
	ColorBlack    = "235" // dark badge
	ColorBlue     = "39"  // links
)

// Variant is a badge color class.
type Variant string

const (
	VariantSuccess   Variant = "success"
	VariantDanger    Variant = "danger"
	VariantSecondary Variant = "secondary"
	VariantDark      Variant = "dark"
)

// BadgeVariant maps a sentiment to its badge variant.
func BadgeVariant(s results.Sentiment) Variant {
	switch s {
	case results.SentimentPositive:
		return VariantSuccess
	case results.SentimentNegative:
		return VariantDanger
	case results.SentimentNeutral:
		return VariantSecondary
	default:
		return VariantDark
	}
}

// Styles holds all UI styles.
type Styles struct {
	// Text styles
	Header  lipgloss.Style
	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
	Active  lipgloss.Style
	Label   lipgloss.Style
	Link    lipgloss.Style

	// Layout
	Border lipgloss.Style
	Banner lipgloss.Style

	// Badges by variant
	Badges map[Variant]lipgloss.Style
}

// DefaultStyles returns styled components for color terminals.
func DefaultStyles() Styles {
	badge := func(bg string) lipgloss.Style {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorWhite)).
			Background(lipgloss.Color(bg)).
			Padding(0, 1)
	}

	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Active:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Link:    lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color(ColorBlue)),

		Border: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Banner: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorRed)).
			Foreground(lipgloss.Color(ColorRed)).
			Padding(0, 1),

		Badges: map[Variant]lipgloss.Style{
			VariantSuccess:   badge(ColorGreen),
			VariantDanger:    badge(ColorRed),
			VariantSecondary: badge(ColorSlate),
			VariantDark:      badge(ColorBlack),
		},
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header:  plain,
		Title:   plain,
		Success: plain,
		Warning: plain,
		Error:   plain,
		Dim:     plain,
		Active:  plain,
		Label:   plain,
		Link:    plain,
		Border:  plain,
		Banner:  plain,
		Badges: map[Variant]lipgloss.Style{
			VariantSuccess:   plain,
			VariantDanger:    plain,
			VariantSecondary: plain,
			VariantDark:      plain,
		},
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}

// Badge renders the sentiment label. Without color the label is bracketed so
// it stays distinguishable from the title.
func (s Styles) Badge(sentiment results.Sentiment, noColor bool) string {
	label := sentiment.Label()
	if noColor {
		return "[" + label + "]"
	}
	return s.Badges[BadgeVariant(sentiment)].Render(label)
}
