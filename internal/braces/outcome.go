package braces

// State is the state of a brace scan.
type State uint8

const (
	StateScanning State = iota
	StateMatched
	StateUnmatched
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateMatched:
		return "matched"
	case StateUnmatched:
		return "unmatched"
	default:
		return "unknown"
	}
}

// Reason explains why a scan ended unmatched.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonEndOfStream
	ReasonTypeMismatch
	ReasonNameMismatch
	// ReasonNotABrace means the scan did not start on a brace of the expected polarity.
	ReasonNotABrace
	// ReasonStepBudget means the scan gave up after the configured number of tokens.
	ReasonStepBudget
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonEndOfStream:
		return "end-of-stream"
	case ReasonTypeMismatch:
		return "type-mismatch"
	case ReasonNameMismatch:
		return "name-mismatch"
	case ReasonNotABrace:
		return "not-a-brace"
	case ReasonStepBudget:
		return "step-budget"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of a scan.
type Outcome struct {
	State  State
	Reason Reason
	// Steps is the number of tokens visited after the starting token.
	Steps int
}

// Matched reports whether the scan ended in StateMatched.
func (o Outcome) Matched() bool {
	return o.State == StateMatched
}

func matched(steps int) Outcome {
	return Outcome{State: StateMatched, Steps: steps}
}

func unmatched(reason Reason, steps int) Outcome {
	return Outcome{State: StateUnmatched, Reason: reason, Steps: steps}
}
