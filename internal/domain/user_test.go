package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("  Ana@Example.com ", "ana", "a-long-enough-password")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "ana", user.Username)
	assert.False(t, user.IsStaff)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestNewUser_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		username string
		password string
		want     error
	}{
		{"empty email", "", "ana", "a-long-enough-password", ErrEmptyEmail},
		{"invalid email", "not-an-email", "ana", "a-long-enough-password", ErrInvalidEmail},
		{"empty username", "ana@example.com", " ", "a-long-enough-password", ErrEmptyUsername},
		{"short password", "ana@example.com", "ana", "short", ErrPasswordTooShort},
		{"long password", "ana@example.com", "ana", strings.Repeat("x", 73), ErrPasswordTooLong},
		{"no password", "ana@example.com", "ana", "", ErrEmptyPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.email, tt.username, tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUserValidate_StoredUser(t *testing.T) {
	user := &User{
		ID:             uuid.New(),
		Email:          "staff@example.com",
		Username:       "staff",
		HashedPassword: "$2a$10$hash",
	}
	assert.NoError(t, user.Validate())

	user.PhoneNumber = "+55 11 99999-99999"
	assert.ErrorIs(t, user.Validate(), ErrPhoneNumberTooLong)

	user.PhoneNumber = ""
	future := time.Now().Add(48 * time.Hour)
	user.BirthDate = &future
	assert.ErrorIs(t, user.Validate(), ErrBirthDateInFuture)
}

func TestUserDisplayName(t *testing.T) {
	u := &User{Email: "ana@example.com", Username: "ana"}
	assert.Equal(t, "ana@example.com", u.DisplayName())

	u.FirstName, u.LastName = "Ana", "Souza"
	assert.Equal(t, "Ana Souza", u.DisplayName())

	assert.Equal(t, "ana", (&User{Username: "ana"}).DisplayName())
}
