package services

import "github.com/SM8970/Earn-FF-Diamond/internal/models"

// Notifier pushes state changes to the session that owns them. The
// websocket hub implements it; the engine works without one.
type Notifier interface {
	NotifyState(userID string, state *models.RewardState)
	NotifyAdTick(userID string, ticksLeft int)
	NotifyAdReady(userID string)
	NotifySpinResult(userID string, result *models.SpinResult)
	NotifyRedemption(userID string, req *models.RedemptionRequest)
}

type noopNotifier struct{}

func (noopNotifier) NotifyState(string, *models.RewardState) {}

func (noopNotifier) NotifyAdTick(string, int) {}

func (noopNotifier) NotifyAdReady(string) {}

func (noopNotifier) NotifySpinResult(string, *models.SpinResult) {}

func (noopNotifier) NotifyRedemption(string, *models.RedemptionRequest) {}
