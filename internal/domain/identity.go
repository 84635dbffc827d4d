package domain

import "time"

// Identity is the authenticated principal. Email is the scoping key that
// selects the task partition; Name and Picture are display fields only.
type Identity struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Authenticated reports whether an identity is present.
func (i Identity) Authenticated() bool {
	return i.Email != ""
}

type User struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	Picture      string    `db:"picture"`
	PasswordHash string    `db:"password_hash"` // empty for provider-only accounts
	CreatedAt    time.Time `db:"created_at"`
}

// Identity projects the user's auth-relevant fields.
func (u *User) Identity() Identity {
	return Identity{Email: u.Email, Name: u.Name, Picture: u.Picture}
}
