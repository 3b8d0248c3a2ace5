package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/techradar/internal/browser"
	"github.com/matheuskafuri/techradar/internal/news"
	"github.com/matheuskafuri/techradar/internal/store"
	"github.com/matheuskafuri/techradar/internal/topic"
)

// QueryLimit is the longest custom query the input accepts.
const QueryLimit = 50

// Store is the part of the news store the UI drives.
type Store interface {
	Subscribe(fn store.Observer) (unsubscribe func())
	State() store.State
	SetActiveTab(ctx context.Context, k topic.Key) error
	SetCustomQuery(text string)
	ValidateAndFetchCustomNews(ctx context.Context)
	FetchNews(ctx context.Context, initial bool)
}

type mode int

const (
	modeHome mode = iota
	modeBrowse
	modeQuery
	modeHelp
)

type App struct {
	store       Store
	ctx         context.Context
	updates     chan store.State
	unsubscribe func()

	state         store.State
	cursor        int
	previewScroll int
	mode          mode
	prevMode      mode

	width  int
	height int

	// Sub-components
	keys       keyMap
	queryInput textinput.Model
	spinner    spinner.Model
	help       viewport.Model

	spinning      bool
	moreRequested bool
	initialQuery  string
	updateVersion string
	updateURL     string
	currentDate   string
	err           error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Store Store
	// BrowseMode skips the home screen.
	BrowseMode bool
	// Query is submitted as a custom search on startup.
	Query         string
	UpdateVersion string
	UpdateURL     string
}

func NewApp(ctx context.Context, opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "e.g. WebGPU compute shaders"
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = QueryLimit

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	startMode := modeHome
	if opts.BrowseMode || opts.Query != "" {
		startMode = modeBrowse
	}

	return &App{
		store:         opts.Store,
		ctx:           ctx,
		updates:       make(chan store.State, 1),
		state:         opts.Store.State(),
		mode:          startMode,
		keys:          defaultKeys(),
		queryInput:    ti,
		spinner:       sp,
		initialQuery:  strings.TrimSpace(opts.Query),
		updateVersion: opts.UpdateVersion,
		updateURL:     opts.UpdateURL,
		currentDate:   time.Now().Format("Jan 2"),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.subscribeCmd(), a.waitForState(), a.startCmd())
}

// startCmd loads the first page of the starting tab, or runs the
// startup query.
func (a *App) startCmd() tea.Cmd {
	if a.initialQuery != "" {
		return a.searchCmd(a.initialQuery)
	}
	if a.state.ActiveTab.IsCustom() || len(a.state.Articles) > 0 {
		return nil
	}
	st, ctx := a.store, a.ctx
	return func() tea.Msg {
		st.FetchNews(ctx, true)
		return nil
	}
}

// subscribeCmd registers with the store off the update loop, since the
// first snapshot is delivered during Subscribe.
func (a *App) subscribeCmd() tea.Cmd {
	st, ch := a.store, a.updates
	return func() tea.Msg {
		unsub := st.Subscribe(func(s store.State) { push(ch, s) })
		return subscribedMsg{unsubscribe: unsub}
	}
}

// push hands s to the UI without blocking the store. An undelivered
// older snapshot is replaced, since only the latest one matters.
func push(ch chan store.State, s store.State) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (a *App) waitForState() tea.Cmd {
	ch := a.updates
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg{state: s}
	}
}

func (a *App) setTabCmd(k topic.Key) tea.Cmd {
	st, ctx := a.store, a.ctx
	return func() tea.Msg {
		if err := st.SetActiveTab(ctx, k); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (a *App) searchCmd(query string) tea.Cmd {
	st, ctx := a.store, a.ctx
	return func() tea.Msg {
		st.SetCustomQuery(query)
		st.ValidateAndFetchCustomNews(ctx)
		return nil
	}
}

func (a *App) reloadCmd() tea.Cmd {
	st, ctx := a.store, a.ctx
	return func() tea.Msg {
		st.FetchNews(ctx, true)
		return nil
	}
}

func (a *App) fetchMoreCmd() tea.Cmd {
	a.moreRequested = true
	st, ctx := a.store, a.ctx
	return func() tea.Msg {
		st.FetchNews(ctx, false)
		return moreDoneMsg{}
	}
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if url == "" {
			return errMsg{err: errors.New("no source link for this article, press s to search the web")}
		}
		if err := browser.Open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func searchWebCmd(title string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Search(title); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (a *App) busy() bool {
	return a.state.IsLoading || a.state.IsFetchingMore
}

func (a *App) startSpinner() tea.Cmd {
	if a.spinning || !a.busy() {
		return nil
	}
	a.spinning = true
	return a.spinner.Tick
}

// maybeFetchMore asks for the next page once the end of the list is on
// screen. Failed fetches are not retried automatically.
func (a *App) maybeFetchMore() tea.Cmd {
	st := a.state
	if a.mode != modeBrowse || a.moreRequested {
		return nil
	}
	if st.ActiveTab.IsCustom() || !st.HasMore || a.busy() || st.Err != "" {
		return nil
	}
	if !nearEnd(a.cursor, len(st.Articles), a.contentHeight()) {
		return nil
	}
	return a.fetchMoreCmd()
}

func (a *App) selected() *news.Article {
	if a.cursor < len(a.state.Articles) {
		return &a.state.Articles[a.cursor]
	}
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.mode == modeHelp {
			a.help = newHelpViewport(a.width, a.height-1)
		}
		return a, a.maybeFetchMore()

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case subscribedMsg:
		a.unsubscribe = msg.unsubscribe
		return a, nil

	case stateMsg:
		if msg.state.ActiveTab != a.state.ActiveTab {
			a.cursor = 0
			a.previewScroll = 0
		}
		a.state = msg.state
		if a.cursor >= len(a.state.Articles) {
			a.cursor = max(0, len(a.state.Articles)-1)
		}
		return a, tea.Batch(a.waitForState(), a.startSpinner(), a.maybeFetchMore())

	case moreDoneMsg:
		a.moreRequested = false
		return a, a.maybeFetchMore()

	case errMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if !a.busy() {
			a.spinning = false
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	// Mode-specific handling
	switch a.mode {
	case modeHome:
		return a.handleHomeKey(msg)
	case modeQuery:
		return a.handleQueryKey(msg)
	case modeHelp:
		return a.handleHelpKey(msg)
	}

	k := a.keys
	n := len(a.state.Articles)
	switch {
	case key.Matches(msg, k.Quit):
		return a, tea.Quit
	case key.Matches(msg, k.Tab1, k.Tab2, k.Tab3):
		tab, _ := tabAt(int(msg.String()[0] - '0'))
		return a, a.switchTab(tab)
	case key.Matches(msg, k.NextTab):
		return a, a.switchTab(shiftTab(a.state.ActiveTab, 1))
	case key.Matches(msg, k.PrevTab):
		return a, a.switchTab(shiftTab(a.state.ActiveTab, -1))
	case key.Matches(msg, k.Down):
		if a.cursor < n-1 {
			a.cursor++
			a.previewScroll = 0
		}
		return a, a.maybeFetchMore()
	case key.Matches(msg, k.Up):
		if a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		}
		return a, nil
	case key.Matches(msg, k.PageDown):
		a.previewScroll++
		return a, nil
	case key.Matches(msg, k.PageUp):
		if a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case key.Matches(msg, k.Open):
		if art := a.selected(); art != nil {
			return a, openBrowserCmd(art.SourceURL)
		}
		return a, nil
	case key.Matches(msg, k.WebSearch):
		if art := a.selected(); art != nil {
			return a, searchWebCmd(art.Title)
		}
		return a, nil
	case key.Matches(msg, k.Query):
		return a, a.switchTab(topic.Custom)
	case key.Matches(msg, k.Retry):
		return a, a.retry()
	case key.Matches(msg, k.Home):
		a.mode = modeHome
		return a, nil
	case key.Matches(msg, k.Help):
		return a, a.openHelp()
	}

	return a, nil
}

func (a *App) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := a.keys
	switch {
	case key.Matches(msg, k.Quit):
		return a, tea.Quit
	case key.Matches(msg, k.Tab1, k.Tab2, k.Tab3):
		a.mode = modeBrowse
		tab, _ := tabAt(int(msg.String()[0] - '0'))
		return a, a.switchTab(tab)
	case key.Matches(msg, k.Help):
		return a, a.openHelp()
	case key.Matches(msg, k.Submit):
		a.mode = modeBrowse
		return a, a.maybeFetchMore()
	}
	return a, nil
}

func (a *App) handleQueryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := a.keys
	switch {
	case key.Matches(msg, k.Cancel):
		a.mode = modeBrowse
		a.queryInput.Blur()
		return a, nil
	case key.Matches(msg, k.Submit):
		a.mode = modeBrowse
		a.queryInput.Blur()
		a.cursor = 0
		a.previewScroll = 0
		return a, a.searchCmd(strings.TrimSpace(a.queryInput.Value()))
	}

	var cmd tea.Cmd
	a.queryInput, cmd = a.queryInput.Update(msg)
	return a, cmd
}

func (a *App) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "?", "esc", "q":
		a.mode = a.prevMode
		return a, nil
	}
	var cmd tea.Cmd
	a.help, cmd = a.help.Update(msg)
	return a, cmd
}

// switchTab resets the cursor and asks the store to change tabs. The
// Custom tab also opens the query input.
func (a *App) switchTab(k topic.Key) tea.Cmd {
	if k == a.state.ActiveTab {
		if k.IsCustom() && a.mode == modeBrowse {
			return a.enterQuery()
		}
		return nil
	}
	a.cursor = 0
	a.previewScroll = 0
	cmd := a.setTabCmd(k)
	if k.IsCustom() {
		return tea.Batch(cmd, a.enterQuery())
	}
	return cmd
}

func (a *App) enterQuery() tea.Cmd {
	if a.mode == modeQuery {
		return nil
	}
	a.mode = modeQuery
	a.queryInput.SetValue(a.state.CustomQuery)
	a.queryInput.CursorEnd()
	return a.queryInput.Focus()
}

func (a *App) retry() tea.Cmd {
	st := a.state
	switch {
	case a.busy():
		return nil
	case st.ActiveTab.IsCustom():
		if strings.TrimSpace(st.CustomQuery) == "" {
			return a.enterQuery()
		}
		return a.searchCmd(st.CustomQuery)
	case len(st.Articles) > 0 && st.Err != "" && !a.moreRequested:
		return a.fetchMoreCmd()
	}
	return a.reloadCmd()
}

func (a *App) openHelp() tea.Cmd {
	a.prevMode = a.mode
	a.mode = modeHelp
	a.help = newHelpViewport(max(a.width, 40), max(a.height-1, 10))
	return nil
}

// contentHeight is the number of lines inside the list pane.
func (a *App) contentHeight() int {
	if a.height == 0 {
		return 30
	}
	// header, tabs, status bar, pane borders
	h := a.height - 5
	if a.state.ActiveTab.IsCustom() {
		h--
	}
	return max(h, 3)
}

func (a *App) withBottomBar(content string, hints string) string {
	bar := renderBottomBar(hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) queryLine() string {
	if a.mode == modeQuery {
		return a.queryInput.View()
	}
	line := searchPromptStyle.Render("/ ")
	if q := a.state.CustomQuery; q != "" {
		line += q
	} else {
		line += helpDimStyle.Render("press / to enter a query")
	}
	if e := a.state.CustomQueryErr; e != "" {
		line += "  " + errorStyle.Render(e)
	}
	return line
}

func (a *App) statusHints() string {
	k := a.keys
	if a.mode == modeQuery {
		return hints(k.Submit, k.Cancel)
	}
	return hints(k.NextTab, k.Down, k.Open, k.WebSearch, k.Query, k.Help, k.Quit)
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  techradar")
	}

	switch a.mode {
	case modeHome:
		return a.withBottomBar(
			renderHomeScreen(a.width, a.height-1, a.updateVersion, a.updateURL),
			hints(a.keys.Tab1, a.keys.Tab2, a.keys.Tab3, a.keys.Help, a.keys.Quit),
		)
	case modeHelp:
		return a.withBottomBar(a.help.View(), "j/k scroll  ? close")
	}

	st := a.state
	contentHeight := a.contentHeight()
	listWidth := int(float64(a.width) * 0.4)
	previewWidth := a.width - listWidth - 1 // gap

	// Header
	headerLeft := headerStyle.Render("techradar")
	headerRight := headerDateStyle.Render(a.currentDate + " ")
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	rows := []string{header, renderTabs(st.ActiveTab, a.width)}
	if st.ActiveTab.IsCustom() {
		rows = append(rows, a.queryLine())
	}

	// List pane
	listContent := renderList(st, a.cursor, contentHeight, listWidth-4, a.spinner.View())
	listPane := listPaneStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)

	// Preview pane
	previewContent := renderPreview(a.selected(), previewWidth-4, contentHeight, a.previewScroll)
	previewPane := previewPaneStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)

	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, listPane, " ", previewPane))

	// Status bar
	status := renderStatusBar(st, a.width, a.statusHints())
	if a.err != nil {
		status = errorStyle.Render(" " + a.err.Error())
	}
	rows = append(rows, status)

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// Run starts the TUI application.
func Run(ctx context.Context, opts RunOpts) error {
	app := NewApp(ctx, opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	app.close()
	return err
}
