package workflow

// NewSubmissionBuilder configures the lifecycle of one bill submission attempt:
//
//	EDITING --SUBMIT--> GATING --PERSIST[attached]--> SUBMITTING --NAVIGATE--> DONE
//	                    GATING --BLOCK--> BLOCKED
//	                                                      SUBMITTING --FAIL--> FAILED
//
// attached reports whether the upload phase produced both the file URL and name.
func NewSubmissionBuilder(attached GuardFunc) StateMachineBuilder {
	b := NewBuilder()

	b.Configure(StateEditing).
		Permit(TriggerSubmit, StateGating)

	b.Configure(StateGating).
		PermitIf(TriggerPersist, StateSubmitting, attached).
		Permit(TriggerBlock, StateBlocked)

	b.Configure(StateSubmitting).
		Permit(TriggerNavigate, StateDone).
		Permit(TriggerFail, StateFailed)

	return b
}
