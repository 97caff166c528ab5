package imap

// SessionState is the lifecycle position of a mailbox session.
type SessionState string

const (
	StateDisconnected SessionState = "disconnected"
	StateConnecting   SessionState = "connecting"
	StateReady        SessionState = "ready"
	StateSelected     SessionState = "selected"
	StateSearching    SessionState = "searching"
	StateFetching     SessionState = "fetching"
	StateClosing      SessionState = "closing"
	StateError        SessionState = "error"
)

func (s SessionState) String() string {
	return string(s)
}

var transitions = map[SessionState][]SessionState{
	StateDisconnected: {StateConnecting},
	StateConnecting:   {StateReady, StateError, StateClosing},
	StateReady:        {StateSelected, StateError, StateClosing},
	StateSelected:     {StateSearching, StateFetching, StateError, StateClosing},
	StateSearching:    {StateSelected, StateError, StateClosing},
	StateFetching:     {StateSelected, StateError, StateClosing},
	StateError:        {StateClosing},
	StateClosing:      {StateDisconnected, StateError},
}

func canTransition(from, to SessionState) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
