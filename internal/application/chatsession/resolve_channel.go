package chatsession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lizachat/liza/internal/domain/channel"
	"github.com/lizachat/liza/internal/domain/errs"
)

// ResolveResult is returned when a channel has been resolved and activated.
type ResolveResult struct {
	Channel channel.Handle
	Created bool
}

// ResolveChannelUseCase finds or creates the unique 1:1 channel between the
// current user and a peer.
//
// Resolutions for the same unordered pair are serialized in-process, so a
// rapid double-click cannot race itself into two channels. True concurrent
// creation by independent clients is collapsed by the collaborator's
// pair-keyed create (see Messaging.CreateDirectChannel).
type ResolveChannelUseCase struct {
	messaging Messaging
	users     UserStore
	active    ActiveChannelStore
	logger    *slog.Logger
	metrics   ResolutionMetrics

	mu    sync.Mutex
	pairs map[string]*sync.Mutex
}

// NewResolveChannelUseCase creates a new ResolveChannelUseCase.
// metrics may be nil.
func NewResolveChannelUseCase(
	messaging Messaging,
	users UserStore,
	active ActiveChannelStore,
	logger *slog.Logger,
	metrics ResolutionMetrics,
) *ResolveChannelUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResolveChannelUseCase{
		messaging: messaging,
		users:     users,
		active:    active,
		logger:    logger,
		metrics:   metrics,
		pairs:     make(map[string]*sync.Mutex),
	}
}

// Execute resolves the 1:1 channel for {self, peer} and activates it.
func (uc *ResolveChannelUseCase) Execute(
	ctx context.Context,
	cmd ResolveChannelCommand,
) (ResolveResult, error) {
	if err := uc.validate(cmd); err != nil {
		return ResolveResult{}, err
	}

	if err := uc.checkIdentities(ctx, cmd); err != nil {
		return ResolveResult{}, err
	}

	lock := uc.pairLock(channel.PairKey(cmd.SelfID, cmd.PeerID))
	lock.Lock()
	defer lock.Unlock()

	result, err := uc.resolve(ctx, cmd)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.ObserveFailure()
		}
		return ResolveResult{}, err
	}

	if activateErr := uc.active.SetActive(ctx, cmd.SelfID, result.Channel.ID); activateErr != nil {
		if uc.metrics != nil {
			uc.metrics.ObserveFailure()
		}
		return ResolveResult{}, &ResolutionError{
			Message: "failed to activate channel",
			Err:     activateErr,
		}
	}

	if uc.metrics != nil {
		uc.metrics.ObserveResolved(result.Created)
	}
	return result, nil
}

func (uc *ResolveChannelUseCase) validate(cmd ResolveChannelCommand) error {
	if cmd.SelfID == "" {
		return ErrSelfRequired
	}
	if cmd.PeerID == "" {
		return ErrPeerRequired
	}
	if cmd.SelfID == cmd.PeerID {
		return ErrSelfChat
	}
	return nil
}

// checkIdentities verifies both sides of the pair are known users.
func (uc *ResolveChannelUseCase) checkIdentities(ctx context.Context, cmd ResolveChannelCommand) error {
	for _, id := range []string{cmd.SelfID, cmd.PeerID} {
		if _, err := uc.users.GetByExternalID(ctx, id); err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrUnknownIdentity, id)
			}
			return &ResolutionError{Message: "failed to look up identity", Err: err}
		}
	}
	return nil
}

func (uc *ResolveChannelUseCase) resolve(
	ctx context.Context,
	cmd ResolveChannelCommand,
) (ResolveResult, error) {
	filter := ChannelFilter{
		MemberID: cmd.SelfID,
		Kinds:    []string{channel.KindMessaging},
	}
	channels, err := uc.messaging.ListChannels(ctx, filter)
	if err != nil {
		return ResolveResult{}, &ResolutionError{Message: "failed to list channels", Err: err}
	}

	existing := make([]channel.Handle, 0, 1)
	for _, ch := range channels {
		if ch.IsDirectBetween(cmd.SelfID, cmd.PeerID) {
			existing = append(existing, ch)
		}
	}

	// Exactly one matching channel per unordered pair is the invariant.
	// More than one is a data-integrity anomaly: take the first and flag it
	// loudly, do not repair silently.
	if len(existing) > 1 {
		uc.logger.WarnContext(ctx, "duplicate 1:1 channels for pair",
			slog.String("pair", channel.PairKey(cmd.SelfID, cmd.PeerID)),
			slog.String("selected_channel", existing[0].ID),
			slog.Int("duplicates", len(existing)),
		)
		if uc.metrics != nil {
			uc.metrics.ObserveDuplicatePair()
		}
	}

	if len(existing) > 0 {
		watched, watchErr := uc.messaging.WatchChannel(ctx, existing[0].ID)
		if watchErr != nil {
			return ResolveResult{}, &ResolutionError{Message: "failed to watch channel", Err: watchErr}
		}
		return ResolveResult{Channel: watched, Created: false}, nil
	}

	created, createErr := uc.messaging.CreateDirectChannel(ctx, cmd.SelfID, cmd.PeerID)
	if createErr != nil {
		return ResolveResult{}, &ResolutionError{Message: "failed to create channel", Err: createErr}
	}

	watched, watchErr := uc.messaging.WatchChannel(ctx, created.ID)
	if watchErr != nil {
		return ResolveResult{}, &ResolutionError{Message: "failed to watch channel", Err: watchErr}
	}
	return ResolveResult{Channel: watched, Created: true}, nil
}

func (uc *ResolveChannelUseCase) pairLock(key string) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	lock, ok := uc.pairs[key]
	if !ok {
		lock = &sync.Mutex{}
		uc.pairs[key] = lock
	}
	return lock
}
