package directory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lizachat/liza/internal/application/directory"
	"github.com/lizachat/liza/internal/domain/user"
)

func TestListDirectory_ExcludesViewer(t *testing.T) {
	// Arrange
	store := &fakeStore{users: []*user.User{
		mustUser(t, "viewer", "Me", "me@example.com"),
		mustUser(t, "u2", "Bob", "bob@example.com"),
		mustUser(t, "u3", "Carol", "carol@example.com"),
	}}
	uc := directory.NewListDirectoryUseCase(store)

	// Act
	users, err := uc.Execute(context.Background(), directory.ListDirectoryQuery{ViewerID: "viewer"})

	// Assert
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u2", users[0].ExternalID())
	assert.Equal(t, "u3", users[1].ExternalID())
}

func TestListDirectory_EmptyDirectory(t *testing.T) {
	uc := directory.NewListDirectoryUseCase(&fakeStore{})

	users, err := uc.Execute(context.Background(), directory.ListDirectoryQuery{ViewerID: "viewer"})

	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestListDirectory_RequiresViewer(t *testing.T) {
	uc := directory.NewListDirectoryUseCase(&fakeStore{})

	_, err := uc.Execute(context.Background(), directory.ListDirectoryQuery{})

	require.ErrorIs(t, err, directory.ErrViewerRequired)
}
