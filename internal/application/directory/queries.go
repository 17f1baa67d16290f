package directory

// Query is the base interface for directory queries.
type Query interface {
	QueryName() string
}

// ListDirectoryQuery requests the full directory as seen by one viewer.
type ListDirectoryQuery struct {
	// ViewerID is the external ID of the requesting user. The viewer's own
	// record is excluded from the result.
	ViewerID string
}

func (q ListDirectoryQuery) QueryName() string { return "ListDirectory" }

// SearchUsersQuery requests a substring search over the directory.
type SearchUsersQuery struct {
	ViewerID string
	Term     string
}

func (q SearchUsersQuery) QueryName() string { return "SearchUsers" }

// GetUserQuery requests a single record by external ID.
type GetUserQuery struct {
	ExternalID string
}

func (q GetUserQuery) QueryName() string { return "GetUser" }
