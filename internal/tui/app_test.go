package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matheuskafuri/techradar/internal/news"
	"github.com/matheuskafuri/techradar/internal/store"
	"github.com/matheuskafuri/techradar/internal/topic"
)

type fakeStore struct {
	mu    sync.Mutex
	state store.State
	calls []string
}

func newFakeStore(st store.State) *fakeStore {
	if st.ActiveTab == "" {
		st.ActiveTab = topic.Tech
	}
	return &fakeStore{state: st}
}

func (f *fakeStore) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeStore) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeStore) Subscribe(fn store.Observer) func() {
	f.record("subscribe")
	fn(f.State())
	return func() { f.record("unsubscribe") }
}

func (f *fakeStore) State() store.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeStore) SetActiveTab(ctx context.Context, k topic.Key) error {
	if !k.Valid() {
		return topic.ErrUnknown
	}
	f.record("tab %s", k)
	f.mu.Lock()
	f.state.ActiveTab = k
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) SetCustomQuery(text string) {
	f.record("query %q", text)
}

func (f *fakeStore) ValidateAndFetchCustomNews(ctx context.Context) {
	f.record("search")
}

func (f *fakeStore) FetchNews(ctx context.Context, initial bool) {
	if initial {
		f.record("fetch")
		return
	}
	f.record("more")
}

// run executes cmd and any batched commands, returning the produced
// messages. Commands still blocked after a short wait, like the state
// listener, are abandoned.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(50 * time.Millisecond):
		return nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func articles(n int) []news.Article {
	out := make([]news.Article, n)
	for i := range out {
		out[i] = news.Article{Title: fmt.Sprintf("story %d", i), SourceURL: "https://example.com"}
	}
	return out
}

func browsing(fs *fakeStore) *App {
	a := NewApp(context.Background(), RunOpts{Store: fs, BrowseMode: true})
	a.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	return a
}

func send(a *App, msg tea.Msg) []tea.Msg {
	_, cmd := a.Update(msg)
	return run(cmd)
}

func TestNumberKeySwitchesTab(t *testing.T) {
	fs := newFakeStore(store.State{HasMore: true})
	a := browsing(fs)

	send(a, runes("2"))
	calls := fs.Calls()
	if len(calls) != 1 || calls[0] != "tab NVIDIA" {
		t.Errorf("calls = %v", calls)
	}
}

func TestTabKeyCycles(t *testing.T) {
	fs := newFakeStore(store.State{ActiveTab: topic.Nvidia})
	a := browsing(fs)

	send(a, tea.KeyMsg{Type: tea.KeyShiftTab})
	if calls := fs.Calls(); len(calls) != 1 || calls[0] != "tab TECH" {
		t.Errorf("calls = %v", calls)
	}
}

func TestQuerySubmitTrims(t *testing.T) {
	fs := newFakeStore(store.State{})
	a := browsing(fs)

	send(a, runes("/"))
	if a.mode != modeQuery {
		t.Fatalf("mode = %v, want query", a.mode)
	}
	send(a, runes("  webgpu compute "))
	send(a, tea.KeyMsg{Type: tea.KeyEnter})

	want := []string{"tab CUSTOM", `query "webgpu compute"`, "search"}
	if got := fs.Calls(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if a.mode != modeBrowse {
		t.Errorf("mode = %v, want browse", a.mode)
	}
}

func TestQueryEscapeCancels(t *testing.T) {
	fs := newFakeStore(store.State{ActiveTab: topic.Custom})
	a := browsing(fs)

	send(a, runes("/"))
	send(a, runes("abc"))
	send(a, tea.KeyMsg{Type: tea.KeyEsc})

	if a.mode != modeBrowse {
		t.Errorf("mode = %v, want browse", a.mode)
	}
	if calls := fs.Calls(); len(calls) != 0 {
		t.Errorf("unexpected calls %v", calls)
	}
}

func TestQueryCharLimit(t *testing.T) {
	fs := newFakeStore(store.State{ActiveTab: topic.Custom})
	a := browsing(fs)

	send(a, runes("/"))
	send(a, runes(strings.Repeat("x", QueryLimit+10)))
	if n := len(a.queryInput.Value()); n != QueryLimit {
		t.Errorf("query length = %d, want %d", n, QueryLimit)
	}
}

func TestFetchMoreWhenEndVisible(t *testing.T) {
	fs := newFakeStore(store.State{})
	a := browsing(fs)

	msgs := send(a, stateMsg{state: store.State{ActiveTab: topic.Tech, Articles: articles(3), HasMore: true}})
	if calls := fs.Calls(); len(calls) != 1 || calls[0] != "more" {
		t.Fatalf("calls = %v", calls)
	}

	// A second snapshot before the first request returns must not ask again.
	send(a, stateMsg{state: store.State{ActiveTab: topic.Tech, Articles: articles(3), HasMore: true}})
	if n := len(fs.Calls()); n != 1 {
		t.Errorf("expected one fetch-more, got %d", n)
	}

	var done bool
	for _, m := range msgs {
		if _, ok := m.(moreDoneMsg); ok {
			done = true
		}
	}
	if !done {
		t.Fatal("expected moreDoneMsg")
	}

	// The end is still on screen, so the next page is requested.
	send(a, moreDoneMsg{})
	if calls := fs.Calls(); fmt.Sprint(calls) != "[more more]" {
		t.Errorf("calls = %v", calls)
	}
}

func TestNoFetchMore(t *testing.T) {
	tests := []struct {
		name  string
		state store.State
	}{
		{"no more", store.State{ActiveTab: topic.Tech, Articles: articles(3)}},
		{"custom", store.State{ActiveTab: topic.Custom, Articles: articles(3), HasMore: true}},
		{"error", store.State{ActiveTab: topic.Tech, Articles: articles(3), HasMore: true, Err: "boom"}},
		{"loading", store.State{ActiveTab: topic.Tech, Articles: articles(3), HasMore: true, IsFetchingMore: true}},
		{"end not visible", store.State{ActiveTab: topic.Tech, Articles: articles(30), HasMore: true}},
		{"empty", store.State{ActiveTab: topic.Tech, HasMore: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeStore(store.State{})
			a := browsing(fs)
			send(a, stateMsg{state: tt.state})
			if calls := fs.Calls(); len(calls) != 0 {
				t.Errorf("unexpected calls %v", calls)
			}
		})
	}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name  string
		state store.State
		want  []string
	}{
		{"initial failed", store.State{ActiveTab: topic.Tech, Err: "boom", HasMore: true}, []string{"fetch"}},
		{"page failed", store.State{ActiveTab: topic.Tech, Err: "boom", Articles: articles(30), HasMore: true}, []string{"more"}},
		{"custom", store.State{ActiveTab: topic.Custom, CustomQuery: "rust gpu", Err: "boom"}, []string{`query "rust gpu"`, "search"}},
		{"busy", store.State{ActiveTab: topic.Tech, IsLoading: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeStore(tt.state)
			a := browsing(fs)
			send(a, runes("r"))
			if got := fs.Calls(); fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("calls = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTabChangeResetsCursor(t *testing.T) {
	fs := newFakeStore(store.State{Articles: articles(30)})
	a := browsing(fs)
	send(a, runes("j"))
	send(a, runes("j"))
	if a.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", a.cursor)
	}

	a.Update(stateMsg{state: store.State{ActiveTab: topic.Nvidia}})
	if a.cursor != 0 {
		t.Errorf("cursor = %d, want 0", a.cursor)
	}
}

func TestCursorClampedToArticles(t *testing.T) {
	fs := newFakeStore(store.State{Articles: articles(30)})
	a := browsing(fs)
	a.cursor = 20

	a.Update(stateMsg{state: store.State{ActiveTab: topic.Tech, Articles: articles(5)}})
	if a.cursor != 4 {
		t.Errorf("cursor = %d, want 4", a.cursor)
	}
}

func TestStartup(t *testing.T) {
	t.Run("fetches first page", func(t *testing.T) {
		fs := newFakeStore(store.State{})
		a := NewApp(context.Background(), RunOpts{Store: fs})
		run(a.startCmd())
		if calls := fs.Calls(); fmt.Sprint(calls) != "[fetch]" {
			t.Errorf("calls = %v", calls)
		}
	})
	t.Run("runs query", func(t *testing.T) {
		fs := newFakeStore(store.State{})
		a := NewApp(context.Background(), RunOpts{Store: fs, Query: " llm evals "})
		if a.mode != modeBrowse {
			t.Errorf("mode = %v, want browse", a.mode)
		}
		run(a.startCmd())
		want := []string{`query "llm evals"`, "search"}
		if calls := fs.Calls(); fmt.Sprint(calls) != fmt.Sprint(want) {
			t.Errorf("calls = %v, want %v", calls, want)
		}
	})
	t.Run("subscribes", func(t *testing.T) {
		fs := newFakeStore(store.State{})
		a := NewApp(context.Background(), RunOpts{Store: fs})
		msgs := run(a.subscribeCmd())
		if len(msgs) != 1 {
			t.Fatalf("msgs = %v", msgs)
		}
		a.Update(msgs[0])
		select {
		case st := <-a.updates:
			if st.ActiveTab != topic.Tech {
				t.Errorf("tab = %s", st.ActiveTab)
			}
		default:
			t.Error("expected initial snapshot")
		}
		a.close()
		if calls := fs.Calls(); fmt.Sprint(calls) != "[subscribe unsubscribe]" {
			t.Errorf("calls = %v", calls)
		}
	})
}

func TestPushKeepsLatest(t *testing.T) {
	ch := make(chan store.State, 1)
	push(ch, store.State{CustomQuery: "a"})
	push(ch, store.State{CustomQuery: "b"})
	push(ch, store.State{CustomQuery: "c"})

	if got := (<-ch).CustomQuery; got != "c" {
		t.Errorf("got %q, want c", got)
	}
	select {
	case s := <-ch:
		t.Errorf("unexpected extra snapshot %+v", s)
	default:
	}
}

func TestView(t *testing.T) {
	tests := []struct {
		name  string
		state store.State
		home  bool
		want  string
	}{
		{"home", store.State{}, true, "AI TECH RADAR"},
		{"error", store.State{ActiveTab: topic.Tech, Err: "quota exceeded"}, false, "Something went wrong"},
		{"query error", store.State{ActiveTab: topic.Custom, CustomQueryErr: "Not a technical topic"}, false, "Not a technical topic"},
		{"articles", store.State{ActiveTab: topic.Tech, Articles: articles(2)}, false, "story 1"},
		{"end", store.State{ActiveTab: topic.Tech, Articles: articles(2)}, false, "You've reached the end!"},
		{"read more", store.State{ActiveTab: topic.Tech, Articles: articles(1)}, false, "Read more"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeStore(tt.state)
			a := NewApp(context.Background(), RunOpts{Store: fs, BrowseMode: !tt.home})
			a.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
			if got := a.View(); !strings.Contains(got, tt.want) {
				t.Errorf("View() missing %q:\n%s", tt.want, got)
			}
		})
	}
}

func TestHelpToggle(t *testing.T) {
	fs := newFakeStore(store.State{})
	a := browsing(fs)

	send(a, runes("?"))
	if a.mode != modeHelp {
		t.Fatalf("mode = %v, want help", a.mode)
	}
	send(a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.mode != modeBrowse {
		t.Errorf("mode = %v, want browse", a.mode)
	}
}
