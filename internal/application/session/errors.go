package session

import "errors"

var (
	// ErrIdentityRequired is returned when a command carries no external ID.
	ErrIdentityRequired = errors.New("identity external ID is required")

	// ErrSyncInFlight is returned when a sync for the same identity is
	// already running. The caller may retry once the first sync settles;
	// syncs are never stacked.
	ErrSyncInFlight = errors.New("sync already in flight for this identity")
)

// SyncError is the typed failure surfaced to the UI when reconciliation
// fails. The message is human-readable; the wrapped error keeps the cause.
type SyncError struct {
	Message string
	Err     error
}

func (e *SyncError) Error() string {
	return "sync failed: " + e.Message
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
