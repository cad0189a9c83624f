package cmd

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	userLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Bold(true)

	errorBannerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// replyRenderer turns an assistant reply into terminal output
type replyRenderer func(reply string) string

// newMarkdownRenderer renders replies with glamour, falling back to plain text if the renderer cannot be built
func newMarkdownRenderer() replyRenderer {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return plainRenderer
	}
	return func(reply string) string {
		rendered, err := renderer.Render(reply)
		if err != nil {
			return plainRenderer(reply)
		}
		return rendered
	}
}

func plainRenderer(reply string) string {
	return strings.TrimRight(reply, "\n") + "\n"
}
