package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/lizachat/liza/internal/domain/user"
)

// MaxSearchResults caps the number of matches a search returns.
const MaxSearchResults = 20

// SearchUsersUseCase runs a substring search over the current directory
// snapshot on behalf of one viewer.
type SearchUsersUseCase struct {
	store Store
}

// NewSearchUsersUseCase creates a new SearchUsersUseCase.
func NewSearchUsersUseCase(store Store) *SearchUsersUseCase {
	return &SearchUsersUseCase{store: store}
}

// Execute searches the directory. The viewer's own record never matches.
func (uc *SearchUsersUseCase) Execute(
	ctx context.Context,
	query SearchUsersQuery,
) ([]*user.User, error) {
	if query.ViewerID == "" {
		return nil, ErrViewerRequired
	}

	if strings.TrimSpace(query.Term) == "" {
		return []*user.User{}, nil
	}

	snapshot, err := uc.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	visible := make([]*user.User, 0, len(snapshot))
	for _, u := range snapshot {
		if u.ExternalID() == query.ViewerID {
			continue
		}
		visible = append(visible, u)
	}

	return Search(visible, query.Term), nil
}

// Search filters a snapshot by case-insensitive substring match against
// display name or email. An empty (or whitespace-only) term yields no
// results rather than everything. At most MaxSearchResults records are
// returned; ties keep the snapshot's iteration order, no ranking.
// Pure function of its arguments.
func Search(snapshot []*user.User, term string) []*user.User {
	normalized := strings.ToLower(strings.TrimSpace(term))
	if normalized == "" {
		return []*user.User{}
	}

	matches := make([]*user.User, 0, MaxSearchResults)
	for _, u := range snapshot {
		if strings.Contains(strings.ToLower(u.DisplayName()), normalized) ||
			strings.Contains(strings.ToLower(u.Email()), normalized) {
			matches = append(matches, u)
			if len(matches) == MaxSearchResults {
				break
			}
		}
	}

	return matches
}
