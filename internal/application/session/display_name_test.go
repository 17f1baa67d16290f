package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lizachat/liza/internal/application/session"
)

func TestDeriveDisplayName_FallbackChain(t *testing.T) {
	tests := []struct {
		name     string
		identity session.Identity
		want     string
	}{
		{
			name: "full name wins",
			identity: session.Identity{
				FullName:     "Ann Lee",
				FirstName:    "Ann",
				PrimaryEmail: "ann@example.com",
			},
			want: "Ann Lee",
		},
		{
			name: "first name when full name missing",
			identity: session.Identity{
				FirstName:    "Ann",
				PrimaryEmail: "ann@example.com",
			},
			want: "Ann",
		},
		{
			name: "email when no names",
			identity: session.Identity{
				PrimaryEmail: "ann@example.com",
			},
			want: "ann@example.com",
		},
		{
			name:     "last resort",
			identity: session.Identity{},
			want:     session.UnknownUserName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, session.DeriveDisplayName(tt.identity))
		})
	}
}
