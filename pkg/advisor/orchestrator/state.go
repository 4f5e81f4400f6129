package orchestrator

// State names the steps of the query state machine. Every query walks
// Init -> Route -> PermissionCheck -> Retrieve -> RunSpecialists ->
// Fuse (optional) -> Compose -> Done, with terminal exits to Denied and
// Error.
type State string

const (
	StateInit            State = "init"
	StateRoute           State = "route"
	StatePermissionCheck State = "permission_check"
	StateRetrieve        State = "retrieve"
	StateRunSpecialists  State = "run_specialists"
	StateFuse            State = "fuse"
	StateCompose         State = "compose"
	StateDone            State = "done"
	StateDenied          State = "denied"
	StateError           State = "error"
)

// Outcome classifies how a query terminated.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeDenied  Outcome = "denied"
	OutcomeError   Outcome = "error"
)
