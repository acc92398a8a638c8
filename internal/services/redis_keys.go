package services

import "time"

const (
	KeyUserSession        = "user:%s:session:%s"
	KeyUserProfile        = "user:%s:profile"
	KeyRedemption         = "redemption:%s"
	KeyUserRedemptions    = "user:%s:redemptions"
	KeyPendingRedemptions = "redemptions:pending"
	KeyRateLimit          = "ratelimit:%s:%s"

	TTLUserSession = 24 * time.Hour

	// Per-user history indexes keep the most recent entries only.
	MaxRedemptionHistory = 100

	DefaultRateLimitTaps    = 30 // taps per minute
	DefaultRateLimitSpins   = 30 // spins per minute
	DefaultRateLimitRedeems = 5  // redemption attempts per minute
)
