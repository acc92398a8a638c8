package models

import "time"

type RedemptionStatus string

const (
	RedemptionStatusPending   RedemptionStatus = "pending"
	RedemptionStatusCompleted RedemptionStatus = "completed"
)

// RedemptionRequest is an append-only log entry. The client creates it with
// status pending; only the admin workflow moves it forward, and only to
// completed. Token cost and diamond amount are frozen at creation.
type RedemptionRequest struct {
	ID                string           `json:"id" redis:"id"`
	UserID            string           `json:"user_id" redis:"user_id"`
	GameAccountID     string           `json:"game_account_id" redis:"game_account_id"`
	TokensRedeemed    int64            `json:"tokens_redeemed" redis:"tokens_redeemed"`
	DiamondsRequested int64            `json:"diamonds_requested" redis:"diamonds_requested"`
	Status            RedemptionStatus `json:"status" redis:"status"`
	RequestedAt       time.Time        `json:"requested_at" redis:"requested_at"`
	CompletedAt       *time.Time       `json:"completed_at,omitempty" redis:"completed_at"`
}
