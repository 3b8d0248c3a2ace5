package tui

import (
	"github.com/matheuskafuri/techradar/internal/store"
)

// stateMsg carries a store snapshot into the update loop.
type stateMsg struct {
	state store.State
}

type subscribedMsg struct {
	unsubscribe func()
}

// moreDoneMsg reports that a fetch-more command has returned.
type moreDoneMsg struct{}

type errMsg struct {
	err error
}
