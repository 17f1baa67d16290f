package session

import (
	"context"
	"time"

	"github.com/lizachat/liza/internal/domain/user"
)

// Credential is a messaging-session credential minted for one identity.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Profile is the slice of the user record the messaging collaborator needs
// to bind a session.
type Profile struct {
	ExternalID  string
	DisplayName string
	AvatarURL   string
}

// TokenProvider exchanges a verified identity for a messaging credential.
// Implementations must fail closed: an empty external ID is an error, never
// an empty credential.
type TokenProvider interface {
	CreateToken(ctx context.Context, externalID string) (Credential, error)
}

// Messaging is the messaging collaborator surface the sync needs.
// Interface declared on the consumer side (application layer).
type Messaging interface {
	// ConnectSession binds a messaging session to the profile using the
	// given credential.
	ConnectSession(ctx context.Context, profile Profile, cred Credential) error

	// DisconnectSession tears down the session for the identity. Must be
	// safe to call when no session was ever established.
	DisconnectSession(ctx context.Context, externalID string) error
}

// UserStore is the persistence surface the sync needs.
type UserStore interface {
	Upsert(ctx context.Context, externalID, displayName, email, avatarURL string) (*user.User, error)
}
