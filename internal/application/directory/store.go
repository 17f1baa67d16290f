package directory

import (
	"context"

	"github.com/lizachat/liza/internal/domain/user"
)

// Store is the persistence collaborator for user records.
// Interface declared on the consumer side (application layer).
type Store interface {
	// GetByExternalID finds a user by the identity provider's ID.
	// Returns errs.ErrNotFound when no record exists.
	GetByExternalID(ctx context.Context, externalID string) (*user.User, error)

	// ListAll returns a snapshot of every known user. Ordering is stable
	// within one snapshot (insertion order) but otherwise unspecified.
	ListAll(ctx context.Context) ([]*user.User, error)

	// Upsert inserts a record on first sight of externalID, or updates
	// display name and avatar URL of the existing one. Email is written
	// only on insert. Idempotent for identical inputs.
	Upsert(ctx context.Context, externalID, displayName, email, avatarURL string) (*user.User, error)
}
