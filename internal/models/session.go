package models

import "time"

// UserSession is the server-side record behind an issued token. Logout
// deletes it, which invalidates the token even before expiry.
type UserSession struct {
	UserID        string    `json:"user_id" redis:"user_id"`
	SessionID     string    `json:"session_id" redis:"session_id"`
	GameAccountID string    `json:"game_account_id" redis:"game_account_id"`
	CreatedAt     time.Time `json:"created_at" redis:"created_at"`
	LastAccessed  time.Time `json:"last_accessed" redis:"last_accessed"`
}
