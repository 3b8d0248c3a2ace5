package news

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Article is one AI-summarized news item. Title is its identity.
type Article struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	SourceURL   string `json:"sourceUrl"`
	SourceTitle string `json:"sourceTitle"`
}

var strict = bluemonday.StrictPolicy()

// Clean strips markup the model sometimes leaves in its text and
// collapses whitespace. The title stays case-sensitive.
func (a Article) Clean() Article {
	return Article{
		Title:       CleanText(a.Title),
		Summary:     CleanText(a.Summary),
		SourceURL:   strings.TrimSpace(a.SourceURL),
		SourceTitle: CleanText(a.SourceTitle),
	}
}

// CleanText strips markup with a strict policy, unescapes entities and
// collapses whitespace.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(strict.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// Titles returns the titles of articles in order.
func Titles(articles []Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Title
	}
	return out
}

// TitleSet indexes titles for duplicate checks.
type TitleSet map[string]struct{}

func NewTitleSet(titles []string) TitleSet {
	s := make(TitleSet, len(titles))
	for _, t := range titles {
		s[t] = struct{}{}
	}
	return s
}

func (s TitleSet) Has(title string) bool {
	_, ok := s[title]
	return ok
}

func (s TitleSet) Add(title string) {
	s[title] = struct{}{}
}

// Truncate shortens s to n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
