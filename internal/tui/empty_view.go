package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/techradar/internal/store"
)

// renderEmpty fills the list pane when there are no articles to show.
func renderEmpty(st store.State, width, height int, spin string) string {
	var lines []string
	switch {
	case st.IsLoading && st.ActiveTab.IsCustom():
		lines = []string{spin + " Checking your query and searching...", helpDimStyle.Render("This can take a little while.")}
	case st.IsLoading:
		lines = []string{spin + " Fetching the latest " + st.ActiveTab.Label() + " news...", helpDimStyle.Render("This can take a little while.")}
	case st.Err != "":
		lines = []string{errorStyle.Render("Something went wrong"), helpDimStyle.Render(st.Err), "", helpDimStyle.Render("Press r to try again.")}
	case st.ActiveTab.IsCustom() && st.CustomQueryErr != "":
		lines = []string{errorStyle.Render(st.CustomQueryErr), "", helpDimStyle.Render("Press / to try a different query.")}
	case st.ActiveTab.IsCustom():
		lines = []string{emptyTitleStyle.Render("Custom search"), helpDimStyle.Render("Press / and enter a technical query"), helpDimStyle.Render("to search for related news.")}
	default:
		lines = []string{emptyTitleStyle.Render("No News Found"), helpDimStyle.Render("Try another tab, or press r to reload.")}
	}

	content := strings.Join(lines, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
