package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_EmptyEncodesAsObject(t *testing.T) {
	b, err := json.Marshal(&User{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(b))
	assert.True(t, (&User{}).IsEmpty())
}

func TestUser_JSONFieldNames(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	u := User{
		ID:             "abc",
		Username:       "A",
		AccountNumber:  "ACC1",
		EmailAddress:   "a@x.com",
		IdentityNumber: "ID1",
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id":"abc","username":"A","accountNumber":"ACC1","emailAddress":"a@x.com",
		"identityNumber":"ID1","createdAt":"2024-05-01T10:00:00Z","updatedAt":"2024-05-01T10:00:00Z"
	}`, string(b))

	var back User
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, u, back)
	assert.False(t, back.IsEmpty())
}

func TestUserPatch_Apply(t *testing.T) {
	email := "b@x.com"
	u := User{Username: "A", AccountNumber: "ACC1", EmailAddress: "a@x.com", IdentityNumber: "ID1"}

	UserPatch{EmailAddress: &email}.Apply(&u)

	assert.Equal(t, "b@x.com", u.EmailAddress)
	assert.Equal(t, "A", u.Username)
	assert.Equal(t, "ACC1", u.AccountNumber)
	assert.Equal(t, "ID1", u.IdentityNumber)
}
