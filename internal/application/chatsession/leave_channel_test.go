package chatsession_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lizachat/liza/internal/application/chatsession"
	"github.com/lizachat/liza/internal/domain/channel"
)

func TestLeaveChannel_RemovesSelf(t *testing.T) {
	// Arrange
	channels := &fakeChannels{channels: []channel.Handle{
		{ID: "ch-1", Kind: channel.KindMessaging, Members: []string{"alice", "bob"}},
	}}
	active := newFakeActiveStore()
	require.NoError(t, active.SetActive(context.Background(), "alice", "ch-1"))
	uc := chatsession.NewLeaveChannelUseCase(channels, active, nil)

	// Act
	result, err := uc.Execute(context.Background(), chatsession.LeaveChannelCommand{
		SelfID:    "alice",
		ChannelID: "ch-1",
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Abandoned)
	assert.Equal(t, []string{"bob"}, result.Channel.Members)

	activeID, _ := active.GetActive(context.Background(), "alice")
	assert.Empty(t, activeID)
}

func TestLeaveChannel_NotAbandonedWithMultipleRemaining(t *testing.T) {
	channels := &fakeChannels{channels: []channel.Handle{
		{ID: "ch-1", Kind: channel.KindTeam, Members: []string{"alice", "bob", "carol"}},
	}}
	uc := chatsession.NewLeaveChannelUseCase(channels, newFakeActiveStore(), nil)

	result, err := uc.Execute(context.Background(), chatsession.LeaveChannelCommand{
		SelfID:    "alice",
		ChannelID: "ch-1",
	})

	require.NoError(t, err)
	assert.False(t, result.Abandoned)
	assert.Len(t, result.Channel.Members, 2)
}

func TestLeaveChannel_ValidatesIdentifiers(t *testing.T) {
	uc := chatsession.NewLeaveChannelUseCase(&fakeChannels{}, newFakeActiveStore(), nil)

	_, err := uc.Execute(context.Background(), chatsession.LeaveChannelCommand{ChannelID: "ch-1"})
	require.ErrorIs(t, err, chatsession.ErrSelfRequired)

	_, err = uc.Execute(context.Background(), chatsession.LeaveChannelCommand{SelfID: "alice"})
	require.ErrorIs(t, err, chatsession.ErrChannelRequired)
}

func TestLeaveChannel_RemoveFailure(t *testing.T) {
	channels := &fakeChannels{removeErr: errors.New("upstream 500")}
	uc := chatsession.NewLeaveChannelUseCase(channels, newFakeActiveStore(), nil)

	_, err := uc.Execute(context.Background(), chatsession.LeaveChannelCommand{
		SelfID:    "alice",
		ChannelID: "ch-1",
	})

	var resErr *chatsession.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "failed to leave channel", resErr.Message)
}

func TestLeaveChannel_ClearActiveFailureIsNotFatal(t *testing.T) {
	// Arrange: removal succeeds, clearing the selection does not.
	channels := &fakeChannels{channels: []channel.Handle{
		{ID: "ch-1", Kind: channel.KindMessaging, Members: []string{"alice", "bob"}},
	}}
	active := newFakeActiveStore()
	active.clearErr = errors.New("store down")
	uc := chatsession.NewLeaveChannelUseCase(channels, active, nil)

	// Act
	result, err := uc.Execute(context.Background(), chatsession.LeaveChannelCommand{
		SelfID:    "alice",
		ChannelID: "ch-1",
	})

	// Assert: the leave already happened, so it is reported as a success.
	require.NoError(t, err)
	assert.True(t, result.Abandoned)
}
