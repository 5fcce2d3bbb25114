package workflow

// State represents a step of a bill submission attempt
type State string

const (
	StateEditing    State = "EDITING"
	StateGating     State = "GATING"
	StateSubmitting State = "SUBMITTING"
	StateDone       State = "DONE"
	StateBlocked    State = "BLOCKED"
	StateFailed     State = "FAILED"
)

var validStates = map[State]bool{
	StateEditing:    true,
	StateGating:     true,
	StateSubmitting: true,
	StateDone:       true,
	StateBlocked:    true,
	StateFailed:     true,
}

var terminalStates = map[State]bool{
	StateDone:    true,
	StateBlocked: true,
	StateFailed:  true,
}

// IsTerminal returns true if no further transitions are allowed from the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known submission state
func (s State) IsValid() bool {
	return validStates[s]
}
