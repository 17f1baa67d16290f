package session

// UnknownUserName is the last resort when the provider supplies no usable
// profile field.
const UnknownUserName = "Unknown User"

// DeriveDisplayName computes the display name for an identity using the
// fallback chain: full name, then first name, then primary email, then
// UnknownUserName.
func DeriveDisplayName(id Identity) string {
	if id.FullName != "" {
		return id.FullName
	}
	if id.FirstName != "" {
		return id.FirstName
	}
	if id.PrimaryEmail != "" {
		return id.PrimaryEmail
	}
	return UnknownUserName
}
