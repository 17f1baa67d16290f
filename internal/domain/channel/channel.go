// Package channel models the conversation handles owned by the messaging
// collaborator. The service never stores channels itself; a Handle is a
// snapshot of what the collaborator reported.
package channel

import (
	"slices"
	"strings"
)

// KindMessaging is the 1:1-capable channel kind.
const KindMessaging = "messaging"

// KindTeam is the group channel kind. Listed in the sidebar filter but never
// created by this service.
const KindTeam = "team"

// Handle is a snapshot of one conversation container.
type Handle struct {
	// ID is the opaque identifier assigned by the messaging collaborator.
	// Empty means the channel has not been created yet.
	ID string

	// Kind is the channel kind ("messaging" for 1:1 chats).
	Kind string

	// Members holds the external IDs of the current members.
	Members []string
}

// HasMember reports whether the given external ID is a member.
func (h Handle) HasMember(externalID string) bool {
	return slices.Contains(h.Members, externalID)
}

// MemberCount returns the number of current members.
func (h Handle) MemberCount() int {
	return len(h.Members)
}

// IsDirectBetween reports whether the handle is the unique 1:1 channel for
// the unordered pair {a, b}: exactly two members, both present.
func (h Handle) IsDirectBetween(a, b string) bool {
	return len(h.Members) == 2 && h.HasMember(a) && h.HasMember(b)
}

// IsAbandoned reports whether everyone else has left, leaving a single
// member. The channel stays around in this state; the UI renders it
// distinctly instead of the normal header.
func (h Handle) IsAbandoned() bool {
	return len(h.Members) == 1
}

// PairKey returns the canonical key for an unordered member pair. Creation
// requests are keyed by it so that two racing resolutions for the same pair
// collapse into one channel on the collaborator side.
func PairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}
