package domain

import "time"

// User is an authenticated account. Identity verification happens in the
// excluded API layer; this module only ever sees user ids.
type User struct {
	ID        string
	Email     *string
	CreatedAt time.Time
}

// Profile holds the display data attached to a user. Leaderboards fall back
// to the user id when no profile username exists.
type Profile struct {
	UserID    string
	Username  string
	AvatarURL *string
	CreatedAt time.Time
}
