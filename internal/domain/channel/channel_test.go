package channel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lizachat/liza/internal/domain/channel"
)

func TestHandle_HasMember(t *testing.T) {
	h := channel.Handle{ID: "ch-1", Kind: channel.KindMessaging, Members: []string{"alice", "bob"}}

	assert.True(t, h.HasMember("alice"))
	assert.True(t, h.HasMember("bob"))
	assert.False(t, h.HasMember("carol"))
}

func TestHandle_IsDirectBetween(t *testing.T) {
	h := channel.Handle{Members: []string{"alice", "bob"}}

	assert.True(t, h.IsDirectBetween("alice", "bob"))
	assert.True(t, h.IsDirectBetween("bob", "alice"))
	assert.False(t, h.IsDirectBetween("alice", "carol"))
}

func TestHandle_IsDirectBetween_RejectsLargerChannels(t *testing.T) {
	h := channel.Handle{Members: []string{"alice", "bob", "carol"}}

	// Both members are present, but a three-member channel is not a 1:1.
	assert.False(t, h.IsDirectBetween("alice", "bob"))
}

func TestHandle_IsAbandoned(t *testing.T) {
	assert.True(t, channel.Handle{Members: []string{"alice"}}.IsAbandoned())
	assert.False(t, channel.Handle{Members: []string{"alice", "bob"}}.IsAbandoned())
	assert.False(t, channel.Handle{Members: nil}.IsAbandoned())
}

func TestPairKey_OrderIndependent(t *testing.T) {
	assert.Equal(t, channel.PairKey("alice", "bob"), channel.PairKey("bob", "alice"))
	assert.Equal(t, "alice:bob", channel.PairKey("bob", "alice"))
}
