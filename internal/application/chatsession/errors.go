package chatsession

import "errors"

var (
	// ErrSelfRequired is returned when a command carries no current-user ID.
	ErrSelfRequired = errors.New("current user identity is required")

	// ErrPeerRequired is returned when a resolve command carries no peer ID.
	ErrPeerRequired = errors.New("peer identity is required")

	// ErrSelfChat is returned when a user tries to open a chat with
	// themselves.
	ErrSelfChat = errors.New("cannot open a chat with yourself")

	// ErrUnknownIdentity is returned when self or peer is not a known user.
	ErrUnknownIdentity = errors.New("identity is not a known user")

	// ErrChannelRequired is returned when a leave command carries no
	// channel ID.
	ErrChannelRequired = errors.New("channel ID is required")
)

// ResolutionError is the typed failure surfaced when listing or creation at
// the messaging collaborator fails. No channel is activated; the user may
// retry by re-issuing the open-chat action.
type ResolutionError struct {
	Message string
	Err     error
}

func (e *ResolutionError) Error() string {
	return "channel resolution failed: " + e.Message
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
