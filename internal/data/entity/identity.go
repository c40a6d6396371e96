package entity

import (
	"time"

	"github.com/google/uuid"
)

// Identity is an authenticated account. Username is the primary handle,
// for SMS flows usually the mobile number itself.
type Identity struct {
	Base
	Username   string `db:"username"`
	SecretHash string `db:"secret_hash"`

	// Providers is loaded alongside the identity, not a column.
	Providers []IdentityProvider
}

// IdentityProvider binds an identity to one external authentication
// method instance. (Name, OpenID) is unique across all identities;
// one identity may carry several bindings.
type IdentityProvider struct {
	ID         uuid.UUID `db:"id"`
	IdentityID uuid.UUID `db:"identity_id"`
	Name       string    `db:"name"`
	OpenID     string    `db:"openid"`
	CreatedAt  time.Time `db:"created_at"`
}

// HasProvider reports whether the identity already carries the given binding.
func (i *Identity) HasProvider(name, openid string) bool {
	for _, p := range i.Providers {
		if p.Name == name && p.OpenID == openid {
			return true
		}
	}
	return false
}
