package entity

// LoadPhase enumerates the phases of the list-loading state machine.
type LoadPhase string

// Constants for the load phases.
const (
	PhaseIdle    LoadPhase = "idle"
	PhaseLoading LoadPhase = "loading"
	PhaseLoaded  LoadPhase = "loaded"
	PhaseError   LoadPhase = "error"
)

// LoadState is a snapshot of the orchestrator's published state.
// Snapshots are immutable once published; observers never see a state
// mutated in place.
type LoadState struct {
	Phase LoadPhase `json:"phase"`

	// Progress and Total are meaningful only while Phase is loading.
	// Progress counts detail fetches completed so far.
	Progress int `json:"progress,omitempty"`
	Total    int `json:"total,omitempty"`

	// Items is populated only when Phase is loaded.
	Items []Pokemon `json:"items,omitempty"`

	// Message is populated only when Phase is error.
	Message string `json:"message,omitempty"`
}

// Idle returns the idle state.
func Idle() LoadState {
	return LoadState{Phase: PhaseIdle}
}

// Loading returns a loading state with the given progress counters.
func Loading(progress, total int) LoadState {
	return LoadState{Phase: PhaseLoading, Progress: progress, Total: total}
}

// Loaded returns a loaded state wrapping the given items.
func Loaded(items []Pokemon) LoadState {
	return LoadState{Phase: PhaseLoaded, Items: items}
}

// ErrorState returns an error state carrying a user-facing message.
func ErrorState(message string) LoadState {
	return LoadState{Phase: PhaseError, Message: message}
}
