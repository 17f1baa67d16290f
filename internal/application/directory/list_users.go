package directory

import (
	"context"
	"fmt"

	"github.com/lizachat/liza/internal/domain/user"
)

// ListDirectoryUseCase returns the directory as rendered by the "All Users"
// page: every known record except the viewer's own.
type ListDirectoryUseCase struct {
	store Store
}

// NewListDirectoryUseCase creates a new ListDirectoryUseCase.
func NewListDirectoryUseCase(store Store) *ListDirectoryUseCase {
	return &ListDirectoryUseCase{store: store}
}

// Execute lists all users excluding the viewer, preserving snapshot order.
func (uc *ListDirectoryUseCase) Execute(
	ctx context.Context,
	query ListDirectoryQuery,
) ([]*user.User, error) {
	if query.ViewerID == "" {
		return nil, ErrViewerRequired
	}

	snapshot, err := uc.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*user.User, 0, len(snapshot))
	for _, u := range snapshot {
		if u.ExternalID() == query.ViewerID {
			continue
		}
		users = append(users, u)
	}

	return users, nil
}
