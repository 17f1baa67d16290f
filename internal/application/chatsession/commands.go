package chatsession

// Command is the base interface for chat session commands.
type Command interface {
	CommandName() string
}

// ResolveChannelCommand resolves or creates the unique 1:1 channel between
// the current user and a peer, and marks it active.
type ResolveChannelCommand struct {
	SelfID string
	PeerID string
}

func (c ResolveChannelCommand) CommandName() string { return "ResolveChannel" }

// LeaveChannelCommand removes the current user from a channel and clears the
// active selection.
type LeaveChannelCommand struct {
	SelfID    string
	ChannelID string
}

func (c LeaveChannelCommand) CommandName() string { return "LeaveChannel" }
