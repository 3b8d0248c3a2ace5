package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const welcomeNote = `Summaries are written by an AI model from a live web search.
Source links come from the model too, and some of them will not work.
When a link is dead, press s on the article to search the web for it.`

func renderHomeScreen(width, height int, updateVersion, updateURL string) string {
	keyStyle := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(colorText)

	var lines []string

	lines = append(lines, logoStyle.Render("AI TECH RADAR"))
	lines = append(lines, helpDimStyle.Render("AI-curated technology news, summarized"))
	lines = append(lines, "")
	lines = append(lines, helpDimStyle.Render(welcomeNote))
	lines = append(lines, "")

	// Menu items
	lines = append(lines, keyStyle.Render("[1]")+"  "+labelStyle.Render("Tech news"))
	lines = append(lines, keyStyle.Render("[2]")+"  "+labelStyle.Render("NVIDIA news"))
	lines = append(lines, keyStyle.Render("[3]")+"  "+labelStyle.Render("Custom search"))
	lines = append(lines, "")
	lines = append(lines, keyStyle.Render("[?]")+"  "+labelStyle.Render("FAQ"))
	lines = append(lines, keyStyle.Render("[q]")+"  "+labelStyle.Render("Quit"))

	// Update notification
	if updateVersion != "" {
		note := "Update available: v" + updateVersion
		if updateURL != "" {
			note += " → " + updateURL
		}
		lines = append(lines, "", keyStyle.Render(note))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	contentHeight := strings.Count(content, "\n") + 1

	topPad := (height - contentHeight) / 3
	if topPad < 0 {
		topPad = 0
	}

	// Center horizontally
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		strings.Repeat("\n", topPad)+content)
}
