// Package user contains the user directory aggregate.
package user

import (
	"time"

	"github.com/lizachat/liza/internal/domain/errs"
	"github.com/lizachat/liza/internal/domain/uuid"
)

// User is one known participant of the directory. The record is keyed by the
// identity provider's stable external ID; at most one record exists per
// external ID.
type User struct {
	id          uuid.UUID
	externalID  string // stable key from the identity provider (Clerk, Auth0, etc.)
	displayName string
	email       string // set at creation, never touched by later syncs
	avatarURL   string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewUser creates a new user record on first sync.
// Email and avatar URL may be empty; the external ID may not.
func NewUser(externalID, displayName, email, avatarURL string) (*User, error) {
	if externalID == "" {
		return nil, errs.ErrInvalidInput
	}
	if displayName == "" {
		return nil, errs.ErrInvalidInput
	}

	now := time.Now().UTC()
	return &User{
		id:          uuid.NewUUID(),
		externalID:  externalID,
		displayName: displayName,
		email:       email,
		avatarURL:   avatarURL,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct restores a user from storage.
func Reconstruct(
	id uuid.UUID,
	externalID, displayName, email, avatarURL string,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		id:          id,
		externalID:  externalID,
		displayName: displayName,
		email:       email,
		avatarURL:   avatarURL,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the internal record ID.
func (u *User) ID() uuid.UUID {
	return u.id
}

// ExternalID returns the identity provider's ID for this user.
func (u *User) ExternalID() string {
	return u.externalID
}

// DisplayName returns the display name.
func (u *User) DisplayName() string {
	return u.displayName
}

// Email returns the contact email. May be empty.
func (u *User) Email() string {
	return u.email
}

// AvatarURL returns the avatar URL. May be empty.
func (u *User) AvatarURL() string {
	return u.avatarURL
}

// CreatedAt returns the creation time.
func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

// UpdatedAt returns the time of the last sync that changed the record.
func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

// ApplySync updates the fields a repeated identity sync is allowed to touch:
// display name and avatar URL. Email is fixed at creation.
// Reports whether anything changed.
func (u *User) ApplySync(displayName, avatarURL string) bool {
	updated := false

	if displayName != "" && u.displayName != displayName {
		u.displayName = displayName
		updated = true
	}

	if u.avatarURL != avatarURL {
		u.avatarURL = avatarURL
		updated = true
	}

	if updated {
		u.updatedAt = time.Now().UTC()
	}

	return updated
}
