package chatsession

import (
	"context"

	"github.com/lizachat/liza/internal/domain/channel"
	"github.com/lizachat/liza/internal/domain/user"
)

// ChannelFilter scopes a channel listing. This is always a user-scoped
// listing, never a full-system scan.
type ChannelFilter struct {
	// MemberID restricts the listing to channels the user is a member of.
	MemberID string

	// Kinds restricts the listing to the given channel kinds.
	Kinds []string
}

// Messaging is the messaging collaborator surface channel resolution needs.
// Interface declared on the consumer side (application layer).
type Messaging interface {
	// ListChannels returns the channels matching the filter.
	ListChannels(ctx context.Context, filter ChannelFilter) ([]channel.Handle, error)

	// CreateDirectChannel requests a 1:1 channel for the pair. The request
	// is keyed by the canonical sorted pair on the collaborator side, so
	// racing creations for the same pair yield one channel.
	CreateDirectChannel(ctx context.Context, self, peer string) (channel.Handle, error)

	// WatchChannel subscribes to channel state and returns the current
	// handle.
	WatchChannel(ctx context.Context, channelID string) (channel.Handle, error)

	// RemoveMembers removes the given members and returns the updated
	// handle.
	RemoveMembers(ctx context.Context, channelID string, memberIDs []string) (channel.Handle, error)
}

// ActiveChannelStore tracks which channel is currently selected for a user.
type ActiveChannelStore interface {
	SetActive(ctx context.Context, externalID, channelID string) error
	ClearActive(ctx context.Context, externalID string) error
	GetActive(ctx context.Context, externalID string) (string, error)
}

// UserStore is the persistence surface resolution needs to check that both
// sides of a pair are known identities.
type UserStore interface {
	GetByExternalID(ctx context.Context, externalID string) (*user.User, error)
}

// ResolutionMetrics records resolution outcomes. Implementations may be nil.
type ResolutionMetrics interface {
	ObserveResolved(created bool)
	ObserveDuplicatePair()
	ObserveFailure()
}
