package form

// State is the lifecycle position of a form session:
//
//	Idle -> Editing -> Validating -> ValidationFailed -> Editing
//	                              -> Submitting -> SubmitFailed -> Editing
//	                                            -> Submitted
type State int

const (
	StateIdle State = iota
	StateEditing
	StateValidating
	StateValidationFailed
	StateSubmitting
	StateSubmitFailed
	StateSubmitted
)

var stateNames = [...]string{
	StateIdle:             "idle",
	StateEditing:          "editing",
	StateValidating:       "validating",
	StateValidationFailed: "validation_failed",
	StateSubmitting:       "submitting",
	StateSubmitFailed:     "submit_failed",
	StateSubmitted:        "submitted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
