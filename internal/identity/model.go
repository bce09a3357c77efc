package identity

import "time"

// User represents a registered account. Emails are stored and compared exactly
// as given; uniqueness is case-sensitive.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte

	// ResetCode and ResetCodeExpiresAt form one optional pair: both set while
	// a password-reset challenge is outstanding, both nil otherwise.
	ResetCode          *string
	ResetCodeExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Registration carries the validated input for creating a new account.
type Registration struct {
	Username string
	Email    string
	Password string
}
