package player

import (
	"errors"
	"fmt"
)

// State is a player lifecycle state.
type State string

const (
	StateUnauth      State = "unauth"
	StateAuthorizing State = "authorizing"
	StateTokenReady  State = "token-ready"
	StateConnecting  State = "connecting"
	StateReady       State = "ready"
	StatePlaying     State = "playing"
	StatePaused      State = "paused"
	StateError       State = "error"
)

// Event drives a transition.
type Event string

const (
	EventLogin      Event = "login"
	EventAuthorized Event = "authorized"
	EventConnect    Event = "connect"
	EventConnected  Event = "connected"
	EventPlay       Event = "play"
	EventPause      Event = "pause"
	EventNotReady   Event = "not_ready"
	EventTokenLost  Event = "token_lost"
	EventFail       Event = "fail"
	EventReset      Event = "reset"
	EventLogout     Event = "logout"
)

// ErrInvalidTransition is returned for an event the current state does not accept.
var ErrInvalidTransition = errors.New("invalid player transition")

var transitions = map[State]map[Event]State{
	StateUnauth: {
		EventLogin: StateAuthorizing,
	},
	StateAuthorizing: {
		EventAuthorized: StateTokenReady,
		EventFail:       StateError,
		EventLogout:     StateUnauth,
	},
	StateTokenReady: {
		EventConnect:   StateConnecting,
		EventTokenLost: StateUnauth,
		EventFail:      StateError,
		EventLogout:    StateUnauth,
	},
	StateConnecting: {
		EventConnected: StateReady,
		EventTokenLost: StateUnauth,
		EventFail:      StateError,
		EventLogout:    StateUnauth,
	},
	StateReady: {
		EventPlay:      StatePlaying,
		EventNotReady:  StateConnecting,
		EventTokenLost: StateUnauth,
		EventFail:      StateError,
		EventLogout:    StateUnauth,
	},
	StatePlaying: {
		EventPause:     StatePaused,
		EventPlay:      StatePlaying,
		EventNotReady:  StateConnecting,
		EventTokenLost: StateUnauth,
		EventFail:      StateError,
		EventLogout:    StateUnauth,
	},
	StatePaused: {
		EventPlay:      StatePlaying,
		EventPause:     StatePaused,
		EventNotReady:  StateConnecting,
		EventTokenLost: StateUnauth,
		EventFail:      StateError,
		EventLogout:    StateUnauth,
	},
	StateError: {
		EventReset:  StateUnauth,
		EventLogin:  StateAuthorizing,
		EventLogout: StateUnauth,
	},
}

// Machine tracks one visitor's player state. It is not safe for concurrent use.
type Machine struct {
	state State
}

// InitialState is unauth for Spotify; sources that need no login start ready.
func InitialState(kind Kind) State {
	if kind == KindSpotify {
		return StateUnauth
	}
	return StateReady
}

func NewMachine(initial State) *Machine {
	return &Machine{state: initial}
}

// Restore rebuilds a machine from a persisted state name, falling back to fallback
// for unknown values.
func Restore(saved string, fallback State) *Machine {
	s := State(saved)
	if _, ok := transitions[s]; !ok {
		s = fallback
	}
	return &Machine{state: s}
}

func (m *Machine) State() State {
	return m.state
}

// Can reports whether ev is accepted in the current state.
func (m *Machine) Can(ev Event) bool {
	_, ok := transitions[m.state][ev]
	return ok
}

// Fire applies ev, leaving the state unchanged on ErrInvalidTransition.
func (m *Machine) Fire(ev Event) (State, error) {
	next, ok := transitions[m.state][ev]
	if !ok {
		return m.state, fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, ev, m.state)
	}
	m.state = next
	return next, nil
}
