package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerSubmit   Trigger = "SUBMIT"
	TriggerPersist  Trigger = "PERSIST"
	TriggerBlock    Trigger = "BLOCK"
	TriggerNavigate Trigger = "NAVIGATE"
	TriggerFail     Trigger = "FAIL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
