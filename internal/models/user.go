package models

import "time"

// User represents a user record as held by the record store.
// Empty fields are omitted so that the zero User encodes as {}.
type User struct {
	ID             string    `json:"id,omitempty"`
	Username       string    `json:"username,omitempty"`
	AccountNumber  string    `json:"accountNumber,omitempty"`
	EmailAddress   string    `json:"emailAddress,omitempty"`
	IdentityNumber string    `json:"identityNumber,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
	UpdatedAt      time.Time `json:"updatedAt,omitzero"`
}

// IsEmpty reports whether u is the empty record returned for unknown account numbers.
func (u *User) IsEmpty() bool {
	return u == nil || u.ID == ""
}

// NewUserFields is the payload accepted when creating a user.
type NewUserFields struct {
	Username       string `json:"username" validate:"required"`
	AccountNumber  string `json:"accountNumber" validate:"required"`
	EmailAddress   string `json:"emailAddress" validate:"required"`
	IdentityNumber string `json:"identityNumber" validate:"required"`
}

// UserPatch holds a partial update. Nil fields are left unchanged.
type UserPatch struct {
	Username       *string `json:"username,omitempty"`
	AccountNumber  *string `json:"accountNumber,omitempty"`
	EmailAddress   *string `json:"emailAddress,omitempty"`
	IdentityNumber *string `json:"identityNumber,omitempty"`
}

// Apply copies the supplied patch fields onto u.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.AccountNumber != nil {
		u.AccountNumber = *p.AccountNumber
	}
	if p.EmailAddress != nil {
		u.EmailAddress = *p.EmailAddress
	}
	if p.IdentityNumber != nil {
		u.IdentityNumber = *p.IdentityNumber
	}
}
