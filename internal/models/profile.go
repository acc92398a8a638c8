package models

// UserProfile is the per-identity reward document. The identity key is
// assigned at sign-in and never changes; the game account id is supplied by
// the user at first login. Counters only move through atomic store
// increments, never full-record rewrites.
type UserProfile struct {
	IdentityKey    string `json:"identity_key" redis:"identity_key"`
	GameAccountID  string `json:"game_account_id" redis:"game_account_id"`
	Tokens         int64  `json:"tokens" redis:"tokens"`
	PendingTaps    int64  `json:"pending_taps" redis:"pending_taps"`
	AvailableSpins int64  `json:"available_spins" redis:"available_spins"`
}

// HasGameAccountID reports whether a game account id is on file. Redemption
// and session restore both require one.
func (p *UserProfile) HasGameAccountID() bool {
	return p.GameAccountID != ""
}
