package worker

// Job names used for registration, logging and metric labels
const (
	JobNameSessionState   = "session-state"
	JobNameProviderHealth = "provider-health"
	JobNameAutoFinalize   = "auto-finalize"
)

// InitiatorAutoFinalize is recorded as initiated_by on score entries created
// by the auto-finalize sweep.
const InitiatorAutoFinalize = "worker:auto-finalize"

// resourceHealth labels the sync-log rows the provider-health job writes.
const resourceHealth = "health"
