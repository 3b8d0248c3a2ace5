package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

const faqMarkdown = `# Frequently asked questions

## Why does a source link sometimes lead to "Not Found"?

- **Pages move.** Publishers restructure sites, retitle posts and take
  pages down, often within days of publishing.
- **Search lags behind.** The model finds stories through a web search
  index, which can still point at an address that has since changed.
- **Paywalls.** Some sources only serve the full article to subscribers.

When a link does not work, press **s** on the article. It opens a web
search for the headline, which nearly always finds the story.

## Why do results take a few seconds?

Every page is produced on demand:

1. The model searches the web for stories from the last couple of days.
2. It checks that each story is actually recent.
3. It writes a short technical summary of each one.

Articles appear as soon as they are ready, so the list fills in while
the rest of the page is still being written. Scrolling to the end of the
list asks for the next page.

## What can I search for on the Custom tab?

Any technical topic: a framework, a paper, a chip, a tool. Queries are
checked first, and topics unrelated to technology are turned away with
an explanation. Custom searches return a single page.

## Keys

| Key | Action |
|---|---|
| 1 2 3, tab | switch tab |
| j k | move through articles |
| J K | scroll the preview |
| o, enter | open the source link |
| s | search the web for the headline |
| / | enter a custom query |
| r | reload the current tab |
| h | home screen |
| ? | this page |
| q | quit |
`

func renderFAQ(width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return faqMarkdown
	}
	out, err := r.Render(faqMarkdown)
	if err != nil {
		return faqMarkdown
	}
	return out
}

func newHelpViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.SetContent(renderFAQ(max(20, width-4)))
	return vp
}
