package services

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/SM8970/Earn-FF-Diamond/internal/apperr"
	"github.com/SM8970/Earn-FF-Diamond/internal/config"
	"github.com/SM8970/Earn-FF-Diamond/internal/models"
)

// RewardStore is the slice of the profile store the engine mutates.
// *RedisService implements it; tests wrap it to exercise persistence
// failures.
type RewardStore interface {
	GetProfile(userID string) (*models.UserProfile, error)
	SettleTap(userID string, reward, threshold, grant int64) (*models.UserProfile, error)
	ConsumeSpin(userID string) (int64, bool, error)
	CreditTokens(userID string, amount int64) (int64, error)
	DebitTokens(userID string, cost int64) (int64, bool, error)
	SaveRedemption(req *models.RedemptionRequest) error
}

// RewardEngine owns the tap -> spin -> redeem progression. Each user session
// moves through idle -> ad_playing -> rewarded -> idle; the per-user entry in
// the session map is the explicit session context, there is no global
// counter state.
type RewardEngine struct {
	store    RewardStore
	cfg      *config.Config
	logger   zerolog.Logger
	notifier Notifier

	mu       sync.Mutex
	sessions map[string]*rewardSession

	// draw picks a wheel index; replaceable for deterministic tests.
	draw func(n int) int
}

type rewardSession struct {
	gate           *AdGate
	spinInFlight   bool
	lastSpinResult *int64
}

func NewRewardEngine(store RewardStore, cfg *config.Config, logger zerolog.Logger) *RewardEngine {
	return &RewardEngine{
		store:    store,
		cfg:      cfg,
		logger:   logger,
		notifier: noopNotifier{},
		sessions: make(map[string]*rewardSession),
		draw:     rand.Intn,
	}
}

// SetNotifier wires the presentation push channel. The websocket handler is
// constructed after the engine, so this is a late binding.
func (e *RewardEngine) SetNotifier(n Notifier) {
	if n != nil {
		e.notifier = n
	}
}

func (e *RewardEngine) session(userID string) *rewardSession {
	sess, ok := e.sessions[userID]
	if !ok {
		sess = &rewardSession{}
		e.sessions[userID] = sess
	}
	return sess
}

// Tap opens the ad gate for one reward. Rejected while a gate is already
// active for this user.
func (e *RewardEngine) Tap(userID string) (*models.RewardState, error) {
	e.mu.Lock()
	sess := e.session(userID)
	if sess.gate != nil {
		e.mu.Unlock()
		return nil, apperr.New(apperr.CodeAdGateBusy, "an ad is already playing")
	}

	gate := NewAdGate(e.cfg.AdTickCount, e.cfg.AdTickInterval,
		func(ticksLeft int) {
			e.notifier.NotifyAdTick(userID, ticksLeft)
		},
		func() {
			e.notifier.NotifyAdReady(userID)
		},
	)
	sess.gate = gate
	e.mu.Unlock()

	gate.Start()

	return e.State(userID)
}

// DismissAd consumes a finished ad gate and settles the tap reward: the
// token credit, the pending-tap bump, and any spin grant land as one atomic
// store update. The session returns to idle whether or not persistence
// succeeds.
func (e *RewardEngine) DismissAd(userID string) (*models.RewardState, error) {
	e.mu.Lock()
	sess := e.session(userID)
	gate := sess.gate
	e.mu.Unlock()

	if gate == nil {
		return nil, apperr.New(apperr.CodeAdGateNotReady, "no ad is playing")
	}

	if !gate.Dismiss() {
		return nil, apperr.New(apperr.CodeAdGateNotReady, "the ad has not finished yet")
	}

	e.mu.Lock()
	sess.gate = nil
	e.mu.Unlock()

	profile, err := e.store.SettleTap(userID,
		e.cfg.TapRewardTokens, e.cfg.TapsPerSpinUnlock, e.cfg.SpinGrantSize)
	if err != nil {
		// The reward was earned but not stored; report rather than retry.
		e.logger.Error().Err(err).Str("user_id", userID).
			Msg("tap settlement failed, displayed and stored state may diverge")
		return nil, apperr.Persistence(err, "failed to save tap reward")
	}

	state, err := e.State(userID)
	if err != nil {
		state = e.stateFromProfile(userID, profile)
	}
	e.notifier.NotifyState(userID, state)

	return state, nil
}

// Spin consumes one spin and draws from the wheel. The decrement happens
// before the outcome is known; the payout is credited after the settle
// delay.
func (e *RewardEngine) Spin(userID string) (*models.SpinResult, error) {
	e.mu.Lock()
	sess := e.session(userID)
	if sess.spinInFlight {
		e.mu.Unlock()
		return nil, apperr.New(apperr.CodeSpinInFlight, "a spin is already in progress")
	}
	sess.spinInFlight = true
	e.mu.Unlock()

	remaining, ok, err := e.store.ConsumeSpin(userID)
	if err != nil {
		e.clearSpin(userID, nil)
		return nil, apperr.Persistence(err, "failed to consume spin")
	}
	if !ok {
		e.clearSpin(userID, nil)
		return nil, apperr.New(apperr.CodeSpinsExhausted, "no spins available")
	}

	payout := e.cfg.SpinWheel[e.draw(len(e.cfg.SpinWheel))]

	result := &models.SpinResult{
		Payout:    payout,
		Bust:      payout == 0,
		SpinsLeft: remaining,
	}

	if e.cfg.SpinSettleDelay > 0 {
		// Settle on a copy; the caller's result has already been handed to
		// the response writer.
		settling := *result
		go func() {
			time.Sleep(e.cfg.SpinSettleDelay)
			e.settleSpin(userID, &settling)
		}()
		return result, nil
	}

	e.settleSpin(userID, result)
	return result, nil
}

func (e *RewardEngine) settleSpin(userID string, result *models.SpinResult) {
	balance, err := e.store.CreditTokens(userID, result.Payout)
	if err != nil {
		e.logger.Error().Err(err).Str("user_id", userID).Int64("payout", result.Payout).
			Msg("spin settlement failed, displayed and stored state may diverge")
		e.clearSpin(userID, &result.Payout)
		return
	}
	result.NewBalance = &balance

	e.clearSpin(userID, &result.Payout)
	e.notifier.NotifySpinResult(userID, result)

	if state, err := e.State(userID); err == nil {
		e.notifier.NotifyState(userID, state)
	}
}

func (e *RewardEngine) clearSpin(userID string, lastResult *int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.session(userID)
	sess.spinInFlight = false
	if lastResult != nil {
		sess.lastSpinResult = lastResult
	}
}

// Redeem exchanges the fixed token cost for a pending diamond request. The
// debit and the append are two store operations; if the append fails after
// the debit succeeded the caller gets an explicit reconciliation error, not
// a silent retry.
func (e *RewardEngine) Redeem(userID string, amount int64) (*models.RedemptionRequest, error) {
	if amount != e.cfg.RedeemCostTokens {
		return nil, apperr.Validation("redemptions cost exactly " +
			formatTokens(e.cfg.RedeemCostTokens) + " tokens")
	}

	profile, err := e.store.GetProfile(userID)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load profile")
	}

	if !profile.HasGameAccountID() {
		return nil, apperr.New(apperr.CodeMissingAccountID,
			"your Free Fire UID is not set, please log in again")
	}

	if _, ok, err := e.store.DebitTokens(userID, e.cfg.RedeemCostTokens); err != nil {
		return nil, apperr.Persistence(err, "failed to deduct tokens")
	} else if !ok {
		return nil, apperr.New(apperr.CodeInsufficientBalance, "not enough tokens")
	}

	req := &models.RedemptionRequest{
		ID:                models.GenerateRedemptionID(),
		UserID:            userID,
		GameAccountID:     profile.GameAccountID,
		TokensRedeemed:    e.cfg.RedeemCostTokens,
		DiamondsRequested: e.cfg.RedeemDiamonds,
		Status:            models.RedemptionStatusPending,
		RequestedAt:       time.Now().UTC(),
	}

	if err := e.store.SaveRedemption(req); err != nil {
		// Tokens are gone but the request was not logged. Surface it.
		e.logger.Error().Err(err).
			Str("user_id", userID).
			Str("redemption_id", req.ID).
			Int64("tokens_debited", e.cfg.RedeemCostTokens).
			Msg("redemption append failed after debit, manual reconciliation required")
		return nil, apperr.Wrap(err, apperr.CodeReconciliationRequired,
			"tokens were deducted but the request could not be recorded, contact support with id "+req.ID)
	}

	e.notifier.NotifyRedemption(userID, req)
	if state, err := e.State(userID); err == nil {
		e.notifier.NotifyState(userID, state)
	}

	return req, nil
}

// State assembles the presentation snapshot for one user.
func (e *RewardEngine) State(userID string) (*models.RewardState, error) {
	profile, err := e.store.GetProfile(userID)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load profile")
	}

	return e.stateFromProfile(userID, profile), nil
}

func (e *RewardEngine) stateFromProfile(userID string, profile *models.UserProfile) *models.RewardState {
	e.mu.Lock()
	sess := e.session(userID)
	gate := sess.gate
	spinInFlight := sess.spinInFlight
	lastSpin := sess.lastSpinResult
	e.mu.Unlock()

	state := &models.RewardState{
		Tokens:         profile.Tokens,
		PendingTaps:    profile.PendingTaps,
		AvailableSpins: profile.AvailableSpins,
		TapsUntilSpins: e.cfg.TapsPerSpinUnlock - profile.PendingTaps,
		LastSpinResult: lastSpin,
		AdGate:         models.AdGatePhaseIdle,
		SpinInFlight:   spinInFlight,
	}

	if gate != nil {
		state.AdTicksLeft = gate.TicksLeft()
		if gate.Ready() {
			state.AdGate = models.AdGatePhaseReady
		} else {
			state.AdGate = models.AdGatePhasePlaying
		}
	}

	return state
}

// EndSession drops the in-memory session context on logout.
func (e *RewardEngine) EndSession(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if sess, ok := e.sessions[userID]; ok {
		if sess.gate != nil {
			sess.gate.Stop()
		}
		delete(e.sessions, userID)
	}
}

// CleanupStaleGates abandons ad gates whose viewer walked away.
func (e *RewardEngine) CleanupStaleGates(maxAge time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for userID, sess := range e.sessions {
		if sess.gate != nil && time.Since(sess.gate.StartedAt()) > maxAge {
			sess.gate.Stop()
			sess.gate = nil
			e.logger.Warn().Str("user_id", userID).Msg("abandoned ad gate swept")
		}
	}
}

func formatTokens(n int64) string {
	return strconv.FormatInt(n, 10)
}
