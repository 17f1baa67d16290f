package chatsession

import (
	"context"
	"log/slog"

	"github.com/lizachat/liza/internal/domain/channel"
)

// LeaveResult is returned after the current user left a channel.
type LeaveResult struct {
	Channel channel.Handle

	// Abandoned reports that a single member remains. The channel is not
	// deleted; the UI renders an "everyone else left" indicator instead of
	// the normal header.
	Abandoned bool
}

// LeaveChannelUseCase removes the current user from a channel and clears the
// active selection.
type LeaveChannelUseCase struct {
	messaging Messaging
	active    ActiveChannelStore
	logger    *slog.Logger
}

// NewLeaveChannelUseCase creates a new LeaveChannelUseCase.
func NewLeaveChannelUseCase(
	messaging Messaging,
	active ActiveChannelStore,
	logger *slog.Logger,
) *LeaveChannelUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaveChannelUseCase{
		messaging: messaging,
		active:    active,
		logger:    logger,
	}
}

// Execute removes self from the channel, then deactivates it.
func (uc *LeaveChannelUseCase) Execute(
	ctx context.Context,
	cmd LeaveChannelCommand,
) (LeaveResult, error) {
	if cmd.SelfID == "" {
		return LeaveResult{}, ErrSelfRequired
	}
	if cmd.ChannelID == "" {
		return LeaveResult{}, ErrChannelRequired
	}

	updated, err := uc.messaging.RemoveMembers(ctx, cmd.ChannelID, []string{cmd.SelfID})
	if err != nil {
		return LeaveResult{}, &ResolutionError{Message: "failed to leave channel", Err: err}
	}

	if clearErr := uc.active.ClearActive(ctx, cmd.SelfID); clearErr != nil {
		// The member removal already happened; log and report the partial
		// failure rather than pretending the leave did not occur.
		uc.logger.WarnContext(ctx, "failed to clear active channel",
			slog.String("external_id", cmd.SelfID),
			slog.String("channel_id", cmd.ChannelID),
			slog.String("error", clearErr.Error()),
		)
	}

	uc.logger.InfoContext(ctx, "user left channel",
		slog.String("external_id", cmd.SelfID),
		slog.String("channel_id", cmd.ChannelID),
		slog.Int("remaining_members", updated.MemberCount()),
	)

	return LeaveResult{
		Channel:   updated,
		Abandoned: updated.IsAbandoned(),
	}, nil
}
