package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/techradar/internal/store"
)

func renderStatusBar(st store.State, width int, hints string) string {
	left := fmt.Sprintf(" %d articles · %s", len(st.Articles), st.ActiveTab.Label())
	if st.ActiveTab.IsCustom() && st.CustomQuery != "" {
		left += fmt.Sprintf(" · %q", st.CustomQuery)
	}
	switch {
	case st.IsLoading:
		left += " (loading...)"
	case st.IsFetchingMore:
		left += " (loading more...)"
	}

	right := " " + hints + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

func renderBottomBar(hints string, width int) string {
	right := " " + hints + " "

	gap := width - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
