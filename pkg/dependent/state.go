package dependent

// FieldState is the lifecycle state of the product choice field.
type FieldState int

const (
	StateEmpty FieldState = iota
	StateLoading
	StatePopulated
	StateError
)

func (s FieldState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StatePopulated:
		return "populated"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome describes how a product load settled.
type Outcome string

const (
	OutcomeReset     Outcome = "reset"
	OutcomePopulated Outcome = "populated"
	OutcomeError     Outcome = "error"
	OutcomeStale     Outcome = "stale"
)

// Event is emitted to observers whenever a load settles.
type Event struct {
	Binding     string
	ProductType string
	Seq         uint64
	Outcome     Outcome
	State       FieldState
	Options     int
	Err         error
}
