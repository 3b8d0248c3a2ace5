package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/techradar/internal/topic"
)

// shiftTab returns the tab delta positions away from current, wrapping.
func shiftTab(current topic.Key, delta int) topic.Key {
	tabs := topic.All()
	i := current.Index()
	if i < 0 {
		return tabs[0]
	}
	n := len(tabs)
	return tabs[((i+delta)%n+n)%n]
}

// tabAt maps a 1-based number key to a tab.
func tabAt(n int) (topic.Key, bool) {
	tabs := topic.All()
	if n < 1 || n > len(tabs) {
		return "", false
	}
	return tabs[n-1], true
}

func renderTabs(active topic.Key, width int) string {
	sep := tabSeparatorStyle.Render(" · ")

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, k := range topic.All() {
		style := tabInactiveStyle
		if k == active {
			style = tabActiveStyle
		}
		part := style.Render(fmt.Sprintf("%d %s", i+1, k.Label()))

		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
