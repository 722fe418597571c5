package ux

import "github.com/charmbracelet/lipgloss"

// Styles contains the lipgloss styles used by text output.
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Border  lipgloss.TerminalColor
}

// DefaultStyles returns the colored styles used on terminals.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")), // Purple
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")). // Cyan
			Padding(0, 1),
		Cell: lipgloss.NewStyle().
			Padding(0, 1),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")), // Yellow
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Border: lipgloss.Color("63"),
	}
}

// PlainStyles returns styles without colors or emphasis. Cell padding is
// kept so columns stay readable.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:   plain,
		Header:  plain.Padding(0, 1),
		Cell:    plain.Padding(0, 1),
		Muted:   plain,
		Success: plain,
		Warning: plain,
		Error:   plain,
		Border:  lipgloss.NoColor{},
	}
}
