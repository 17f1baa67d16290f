package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/lizachat/liza/internal/domain/errs"
	"github.com/lizachat/liza/internal/domain/user"
)

// GetUserUseCase fetches a single record by external ID.
type GetUserUseCase struct {
	store Store
}

// NewGetUserUseCase creates a new GetUserUseCase.
func NewGetUserUseCase(store Store) *GetUserUseCase {
	return &GetUserUseCase{store: store}
}

// Execute returns the record for the given external ID.
func (uc *GetUserUseCase) Execute(
	ctx context.Context,
	query GetUserQuery,
) (*user.User, error) {
	if query.ExternalID == "" {
		return nil, errs.ErrInvalidInput
	}

	u, err := uc.store.GetByExternalID(ctx, query.ExternalID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}
