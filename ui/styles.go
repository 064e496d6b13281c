package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type styles struct {
	title      lipgloss.Style
	titleNote  lipgloss.Style
	subtitle   lipgloss.Style
	spoken     lipgloss.Style
	word       lipgloss.Style
	statusBar  lipgloss.Style
	statusNote lipgloss.Style
	errText    lipgloss.Style
	codeFrame  lipgloss.Style
}

// newStyles builds the palette. The word highlight follows the configured
// mode: a painted background reads better on most terminals, but some
// pagers and colorschemes prefer plain recoloring.
func newStyles(highlightMode string) styles {
	dark := termenv.HasDarkBackground()

	subtle := lipgloss.Color("241")
	if !dark {
		subtle = lipgloss.Color("250")
	}

	word := lipgloss.NewStyle().
		Background(lipgloss.Color("226")).
		Foreground(lipgloss.Color("0")).
		Bold(true)
	if highlightMode == "text" {
		word = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true).
			Underline(true)
	}

	return styles{
		title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1).
			Bold(true),
		titleNote: lipgloss.NewStyle().Foreground(subtle).Padding(0, 1),
		subtitle:  lipgloss.NewStyle().Padding(1, 2),
		spoken:    lipgloss.NewStyle().Foreground(subtle),
		word:      word,
		statusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).Padding(0, 1),
		statusNote: lipgloss.NewStyle().Foreground(lipgloss.Color("211")),
		errText:    lipgloss.NewStyle().Foreground(lipgloss.Color("204")),
		codeFrame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
	}
}
