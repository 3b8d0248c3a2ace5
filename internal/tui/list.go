package tui

import (
	"net/url"
	"strings"

	"github.com/matheuskafuri/techradar/internal/news"
	"github.com/matheuskafuri/techradar/internal/store"
)

const (
	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight = 3
	// Lines under the items: blank + footer
	footerHeight = 2
)

func sourceLabel(a news.Article) string {
	if a.SourceTitle != "" {
		return a.SourceTitle
	}
	if u, err := url.Parse(a.SourceURL); err == nil && u.Host != "" {
		return strings.TrimPrefix(u.Host, "www.")
	}
	return "unknown source"
}

func renderListItem(a news.Article, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + news.Truncate(a.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + news.Truncate(a.Title, width-4))
	}

	meta := "  " + itemSourceStyle.Render(news.Truncate(sourceLabel(a), width-4))

	return title + "\n" + meta
}

func visibleItems(height int) int {
	return max(1, (height-footerHeight)/itemHeight)
}

// listWindow returns the [start, end) range of n items shown when the
// cursor is at cursor and visible items fit.
func listWindow(cursor, n, visible int) (start, end int) {
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end = start + visible
	if end > n {
		end = n
		start = max(0, end-visible)
	}
	return start, end
}

// nearEnd reports whether the last article is on screen, which is when
// the next page should be requested.
func nearEnd(cursor, n, height int) bool {
	if n == 0 {
		return false
	}
	_, end := listWindow(cursor, n, visibleItems(height))
	return end == n
}

func listFooter(st store.State, spin string) string {
	switch {
	case st.IsFetchingMore:
		return spin + " " + footerStyle.Render("Loading more news...")
	case st.Err != "":
		return errorStyle.Render("Error: " + st.Err)
	case !st.HasMore:
		return footerStyle.Render("You've reached the end!")
	}
	return ""
}

func renderList(st store.State, cursor, height, width int, spin string) string {
	articles := st.Articles
	if len(articles) == 0 {
		return renderEmpty(st, width, height, spin)
	}

	start, end := listWindow(cursor, len(articles), visibleItems(height))

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(articles[i], i == cursor, width))
		b.WriteString("\n")
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(listFooter(st, spin))

	return b.String()
}
