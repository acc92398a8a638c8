package models

import (
	"fmt"
	"strings"
)

type LoginRequest struct {
	GameAccountID string `json:"game_account_id"`
}

// Validate trims and checks the supplied game account id before anything
// touches the auth collaborator or the store.
func (r *LoginRequest) Validate() error {
	r.GameAccountID = strings.TrimSpace(r.GameAccountID)
	if r.GameAccountID == "" {
		return fmt.Errorf("game account id is required")
	}
	if len(r.GameAccountID) > 32 {
		return fmt.Errorf("game account id must be at most 32 characters")
	}
	return nil
}

type RedeemRequest struct {
	Amount int64 `json:"amount"`
}

type AdGatePhase string

const (
	AdGatePhaseIdle    AdGatePhase = "idle"
	AdGatePhasePlaying AdGatePhase = "ad_playing"
	AdGatePhaseReady   AdGatePhase = "ready"
)

// RewardState is the full presentation snapshot pushed to the client after
// every settled action.
type RewardState struct {
	Tokens         int64       `json:"tokens"`
	PendingTaps    int64       `json:"pending_taps"`
	AvailableSpins int64       `json:"available_spins"`
	TapsUntilSpins int64       `json:"taps_until_spins"`
	LastSpinResult *int64      `json:"last_spin_result,omitempty"`
	AdGate         AdGatePhase `json:"ad_gate"`
	AdTicksLeft    int         `json:"ad_ticks_left"`
	SpinInFlight   bool        `json:"spin_in_flight"`
}

// SpinResult is returned from the spin intent as soon as the wheel is
// drawn. NewBalance is only set once the payout has been credited after the
// settle delay; until then the authoritative balance arrives on the
// SPIN_RESULT push.
type SpinResult struct {
	Payout     int64  `json:"payout"`
	Bust       bool   `json:"bust"`
	NewBalance *int64 `json:"new_balance,omitempty"`
	SpinsLeft  int64  `json:"spins_left"`
}
