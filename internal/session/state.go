package session

// State is the session lifecycle position. The Manager is the sole writer.
type State int

const (
	Uninitialized State = iota
	Unsupported
	Ready
	Starting
	Active
	Ended
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Unsupported:
		return "unsupported"
	case Ready:
		return "ready"
	case Starting:
		return "starting"
	case Active:
		return "active"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}
