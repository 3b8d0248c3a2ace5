package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

const searchBase = "https://www.google.com/search"

// start launches a command without waiting for it. Swapped out in tests.
var start = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

func Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}

	switch runtime.GOOS {
	case "darwin":
		return start("open", rawURL)
	case "windows":
		// Use rundll32 instead of cmd /c start to avoid shell interpretation
		return start("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return start("xdg-open", rawURL)
	}
}

// SearchURL returns a web search for title. Model-supplied source links
// are often dead, and the title is the most reliable way back to the story.
func SearchURL(title string) string {
	q := url.Values{"q": {strings.TrimSpace(title)}}
	return searchBase + "?" + q.Encode()
}

// Search opens a web search for title.
func Search(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("nothing to search for")
	}
	return Open(SearchURL(title))
}
