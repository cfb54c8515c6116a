package views

import (
	"github.com/charmbracelet/lipgloss"

	"gopherview/internal/domain"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title              lipgloss.Style
	AddressBar         lipgloss.Style
	AddressBarFocused  lipgloss.Style
	Dim                lipgloss.Style
	Status             lipgloss.Style
	Help               lipgloss.Style
	Info               lipgloss.Style
	Link               lipgloss.Style
	External           lipgloss.Style
	Cursor             lipgloss.Style
	Suggestion         lipgloss.Style
	SuggestionSelected lipgloss.Style
	Notice             lipgloss.Style
	StatusError        lipgloss.Style
	StatusLoading      lipgloss.Style
	StatusSuccess      lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		AddressBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		AddressBarFocused: lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true),
		Dim:      lipgloss.NewStyle().Faint(true),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Help:     lipgloss.NewStyle().Faint(true),
		Info:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Link:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		External: lipgloss.NewStyle().Foreground(lipgloss.Color("141")).Italic(true),
		Cursor:   lipgloss.NewStyle().Background(lipgloss.Color("238")).Bold(true),
		Suggestion: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")),
		SuggestionSelected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Background(lipgloss.Color("238")).
			Bold(true),
		Notice:        lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("241")), // gray
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
	}
}

// GetTypeColor returns the color used for a menu entry's type label
func GetTypeColor(t domain.ItemType) string {
	switch {
	case t == domain.TypeMenu:
		return "33" // blue
	case t == domain.TypeText:
		return "78" // green
	case t == domain.TypeSearch:
		return "214" // yellow
	case t == domain.TypeHTML:
		return "141" // purple
	case t.IsImage():
		return "51" // cyan
	case t == domain.TypeBinary:
		return "203" // red
	default:
		return "241"
	}
}

// TypeLabel is the short tag shown in front of menu entries
func TypeLabel(t domain.ItemType) string {
	switch {
	case t == domain.TypeMenu:
		return "DIR"
	case t == domain.TypeText:
		return "TXT"
	case t == domain.TypeSearch:
		return "ASK"
	case t == domain.TypeHTML:
		return "WWW"
	case t.IsImage():
		return "IMG"
	case t == domain.TypeBinary:
		return "BIN"
	case t == domain.TypeError:
		return "ERR"
	default:
		return " ? "
	}
}
