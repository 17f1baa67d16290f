package session

// Command is the base interface for session commands.
type Command interface {
	CommandName() string
}

// Identity is the externally-asserted identity delivered by the auth
// provider for one session. Only ExternalID is guaranteed; the rest are
// best-effort profile fields.
type Identity struct {
	ExternalID   string
	FullName     string
	FirstName    string
	PrimaryEmail string
	AvatarURL    string
}

// StartSessionCommand reconciles one authenticated session: upsert the user
// record and connect the messaging session.
type StartSessionCommand struct {
	Identity Identity
}

func (c StartSessionCommand) CommandName() string { return "StartSession" }

// EndSessionCommand tears down the messaging session for an identity that
// became absent (sign-out).
type EndSessionCommand struct {
	ExternalID string
}

func (c EndSessionCommand) CommandName() string { return "EndSession" }
