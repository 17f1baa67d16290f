package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lizachat/liza/internal/domain/user"
)

// SyncResult is returned on successful session start.
type SyncResult struct {
	User       *user.User
	Credential Credential
}

// IdentitySyncUseCase reconciles an externally-asserted identity into the
// user store and manages the messaging session bound to it.
//
// At most one sync runs per identity at a time; a second trigger while one
// is pending returns ErrSyncInFlight instead of starting an overlapping run.
type IdentitySyncUseCase struct {
	store     UserStore
	messaging Messaging
	tokens    TokenProvider
	logger    *slog.Logger

	mu           sync.Mutex
	inFlight     map[string]struct{}
	endRequested map[string]struct{}
}

// NewIdentitySyncUseCase creates a new IdentitySyncUseCase.
func NewIdentitySyncUseCase(
	store UserStore,
	messaging Messaging,
	tokens TokenProvider,
	logger *slog.Logger,
) *IdentitySyncUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentitySyncUseCase{
		store:        store,
		messaging:    messaging,
		tokens:       tokens,
		logger:       logger,
		inFlight:     make(map[string]struct{}),
		endRequested: make(map[string]struct{}),
	}
}

// StartSession runs one reconciliation for the identity: derive the display
// name, upsert the record, mint a messaging credential and connect the
// messaging session. Failures are converted to *SyncError; the use case does
// not retry on its own, a later session-start trigger may.
func (uc *IdentitySyncUseCase) StartSession(
	ctx context.Context,
	cmd StartSessionCommand,
) (SyncResult, error) {
	externalID := cmd.Identity.ExternalID
	if externalID == "" {
		return SyncResult{}, ErrIdentityRequired
	}

	if !uc.acquire(externalID) {
		return SyncResult{}, ErrSyncInFlight
	}
	defer uc.settle(ctx, externalID)

	displayName := DeriveDisplayName(cmd.Identity)

	u, err := uc.store.Upsert(
		ctx,
		externalID,
		displayName,
		cmd.Identity.PrimaryEmail,
		cmd.Identity.AvatarURL,
	)
	if err != nil {
		uc.logger.ErrorContext(ctx, "user upsert failed",
			slog.String("external_id", externalID),
			slog.String("error", err.Error()),
		)
		return SyncResult{}, &SyncError{Message: "failed to save user profile", Err: err}
	}

	cred, err := uc.tokens.CreateToken(ctx, externalID)
	if err != nil {
		return SyncResult{}, &SyncError{Message: "failed to obtain messaging credential", Err: err}
	}

	profile := Profile{
		ExternalID:  externalID,
		DisplayName: displayName,
		AvatarURL:   cmd.Identity.AvatarURL,
	}
	if connectErr := uc.messaging.ConnectSession(ctx, profile, cred); connectErr != nil {
		uc.logger.ErrorContext(ctx, "messaging session connect failed",
			slog.String("external_id", externalID),
			slog.String("error", connectErr.Error()),
		)
		return SyncResult{}, &SyncError{Message: "failed to connect messaging session", Err: connectErr}
	}

	// A sign-out that raced this sync must not leave a dangling session.
	// The deferred settle performs the disconnect.
	if uc.endRequestedFor(externalID) {
		return SyncResult{}, &SyncError{Message: "session ended during sync", Err: nil}
	}

	return SyncResult{User: u, Credential: cred}, nil
}

// EndSession tears down the messaging session for the identity. Teardown is
// attempted even if a connect never completed; if a sync is currently in
// flight the teardown is recorded and performed by that sync when it
// settles.
func (uc *IdentitySyncUseCase) EndSession(ctx context.Context, cmd EndSessionCommand) error {
	if cmd.ExternalID == "" {
		return ErrIdentityRequired
	}

	uc.mu.Lock()
	if _, pending := uc.inFlight[cmd.ExternalID]; pending {
		uc.endRequested[cmd.ExternalID] = struct{}{}
		uc.mu.Unlock()
		return nil
	}
	uc.mu.Unlock()

	if err := uc.messaging.DisconnectSession(ctx, cmd.ExternalID); err != nil {
		return fmt.Errorf("failed to disconnect messaging session: %w", err)
	}

	uc.logger.InfoContext(ctx, "messaging session disconnected",
		slog.String("external_id", cmd.ExternalID),
	)
	return nil
}

func (uc *IdentitySyncUseCase) acquire(externalID string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, pending := uc.inFlight[externalID]; pending {
		return false
	}
	uc.inFlight[externalID] = struct{}{}
	return true
}

// settle releases the in-flight slot and performs a teardown that was
// requested while the sync was running. It runs on every exit path, so a
// failed sync cannot leave a stale teardown request that would poison the
// identity's next sign-in.
func (uc *IdentitySyncUseCase) settle(ctx context.Context, externalID string) {
	uc.mu.Lock()
	_, endPending := uc.endRequested[externalID]
	delete(uc.endRequested, externalID)
	delete(uc.inFlight, externalID)
	uc.mu.Unlock()

	if !endPending {
		return
	}

	if discErr := uc.messaging.DisconnectSession(ctx, externalID); discErr != nil {
		uc.logger.WarnContext(ctx, "post-signout disconnect failed",
			slog.String("external_id", externalID),
			slog.String("error", discErr.Error()),
		)
	}
}

func (uc *IdentitySyncUseCase) endRequestedFor(externalID string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	_, requested := uc.endRequested[externalID]
	return requested
}
