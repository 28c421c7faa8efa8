package inventory

// Outcome is how a message that did not violate the protocol was handled
type Outcome int

// Message outcomes
const (
	// Handled means the message was acted on
	Handled Outcome = iota

	// Ignored means the message was dropped without response, which is not a fault
	Ignored
)

func (o Outcome) String() string {
	if o == Ignored {
		return "ignored"
	}
	return "handled"
}

// Reason explains why a message was ignored
type Reason int

// Ignore reasons
const (
	ReasonNone Reason = iota
	ReasonKnownObject
	ReasonUnknownObject
	ReasonHashMismatch
	ReasonDuplicate
	ReasonCoinbase
	ReasonUndecodable
	ReasonUnknownPhase
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonKnownObject:
		return "known_object"
	case ReasonUnknownObject:
		return "unknown_object"
	case ReasonHashMismatch:
		return "hash_mismatch"
	case ReasonDuplicate:
		return "duplicate"
	case ReasonCoinbase:
		return "coinbase"
	case ReasonUndecodable:
		return "undecodable"
	case ReasonUnknownPhase:
		return "unknown_phase"
	default:
		return "unknown"
	}
}

// Result is the non-error result of handling a message
type Result struct {
	Outcome Outcome
	Reason  Reason
}

var handled = Result{Outcome: Handled}

func ignored(reason Reason) Result {
	return Result{Outcome: Ignored, Reason: reason}
}

// IsIgnored returns true if the message was dropped
func (r Result) IsIgnored() bool {
	return r.Outcome == Ignored
}

func (r Result) String() string {
	if r.Outcome == Ignored {
		return "ignored: " + r.Reason.String()
	}
	return r.Outcome.String()
}
