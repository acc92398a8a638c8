package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SM8970/Earn-FF-Diamond/internal/config"
	"github.com/SM8970/Earn-FF-Diamond/internal/models"
)

// RedisService is the profile store adapter. Profiles live in hashes so
// every counter mutation is a field-level atomic increment or a Lua script;
// the full record is never read-modify-written for balance changes.
type RedisService struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{
		client: client,
		ctx:    ctx,
	}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

// --- Sessions ---

func (s *RedisService) StoreUserSession(session *models.UserSession) error {
	key := fmt.Sprintf(KeyUserSession, session.UserID, session.SessionID)

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return s.client.Set(s.ctx, key, data, TTLUserSession).Err()
}

func (s *RedisService) GetUserSession(userID, sessionID string) (*models.UserSession, error) {
	key := fmt.Sprintf(KeyUserSession, userID, sessionID)

	data, err := s.client.Get(s.ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var session models.UserSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}

	session.LastAccessed = time.Now()
	updatedData, _ := json.Marshal(session)
	s.client.Set(s.ctx, key, updatedData, TTLUserSession)

	return &session, nil
}

func (s *RedisService) DeleteUserSession(userID, sessionID string) error {
	key := fmt.Sprintf(KeyUserSession, userID, sessionID)
	return s.client.Del(s.ctx, key).Err()
}

// --- Profiles ---

// EnsureProfile creates the profile with all-zero defaults if absent and
// merges the game account id in, leaving existing counters untouched.
func (s *RedisService) EnsureProfile(userID, gameAccountID string) error {
	key := fmt.Sprintf(KeyUserProfile, userID)

	pipe := s.client.TxPipeline()
	pipe.HSetNX(s.ctx, key, "identity_key", userID)
	pipe.HSetNX(s.ctx, key, "tokens", 0)
	pipe.HSetNX(s.ctx, key, "pending_taps", 0)
	pipe.HSetNX(s.ctx, key, "available_spins", 0)
	if gameAccountID != "" {
		pipe.HSet(s.ctx, key, "game_account_id", gameAccountID)
	}

	if _, err := pipe.Exec(s.ctx); err != nil {
		return fmt.Errorf("failed to upsert profile: %v", err)
	}

	return nil
}

func (s *RedisService) GetProfile(userID string) (*models.UserProfile, error) {
	key := fmt.Sprintf(KeyUserProfile, userID)

	fields, err := s.client.HGetAll(s.ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %v", err)
	}

	if len(fields) == 0 {
		if err := s.EnsureProfile(userID, ""); err != nil {
			return nil, err
		}
		return &models.UserProfile{IdentityKey: userID}, nil
	}

	profile := &models.UserProfile{
		IdentityKey:    userID,
		GameAccountID:  fields["game_account_id"],
		Tokens:         parseCounter(fields["tokens"]),
		PendingTaps:    parseCounter(fields["pending_taps"]),
		AvailableSpins: parseCounter(fields["available_spins"]),
	}

	return profile, nil
}

func parseCounter(raw string) int64 {
	n, _ := strconv.ParseInt(raw, 10, 64)
	return n
}

// settleTapScript applies one settled tap as a single atomic update: credit
// the tap reward, bump the pending counter, and on reaching the threshold
// wrap it to zero and grant spins.
var settleTapScript = redis.NewScript(`
	local key = KEYS[1]
	local reward = tonumber(ARGV[1])
	local threshold = tonumber(ARGV[2])
	local grant = tonumber(ARGV[3])

	local tokens = redis.call("HINCRBY", key, "tokens", reward)
	local pending = redis.call("HINCRBY", key, "pending_taps", 1)
	local spins = tonumber(redis.call("HGET", key, "available_spins")) or 0

	if pending >= threshold then
		redis.call("HSET", key, "pending_taps", 0)
		pending = 0
		spins = redis.call("HINCRBY", key, "available_spins", grant)
	end

	return {tokens, pending, spins}
`)

// SettleTap persists a completed tap reward and returns the resulting
// {tokens, pending_taps, available_spins}.
func (s *RedisService) SettleTap(userID string, reward, threshold, grant int64) (*models.UserProfile, error) {
	key := fmt.Sprintf(KeyUserProfile, userID)

	res, err := settleTapScript.Run(s.ctx, s.client, []string{key}, reward, threshold, grant).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to settle tap: %v", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("unexpected settle tap reply: %v", res)
	}

	return &models.UserProfile{
		IdentityKey:    userID,
		Tokens:         res[0],
		PendingTaps:    res[1],
		AvailableSpins: res[2],
	}, nil
}

// consumeSpinScript decrements available_spins only if positive, so two
// racing sessions can never drive the counter below zero.
var consumeSpinScript = redis.NewScript(`
	local key = KEYS[1]
	local spins = tonumber(redis.call("HGET", key, "available_spins")) or 0

	if spins <= 0 then
		return -1
	end

	return redis.call("HINCRBY", key, "available_spins", -1)
`)

// ConsumeSpin reserves one spin. Returns the remaining spin count, or
// ok=false when none were available.
func (s *RedisService) ConsumeSpin(userID string) (int64, bool, error) {
	key := fmt.Sprintf(KeyUserProfile, userID)

	remaining, err := consumeSpinScript.Run(s.ctx, s.client, []string{key}).Int64()
	if err != nil {
		return 0, false, fmt.Errorf("failed to consume spin: %v", err)
	}
	if remaining < 0 {
		return 0, false, nil
	}

	return remaining, true, nil
}

// CreditTokens adds a (non-negative) payout to the balance and returns the
// new balance.
func (s *RedisService) CreditTokens(userID string, amount int64) (int64, error) {
	key := fmt.Sprintf(KeyUserProfile, userID)

	balance, err := s.client.HIncrBy(s.ctx, key, "tokens", amount).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to credit tokens: %v", err)
	}

	return balance, nil
}

// debitTokensScript refuses to take the balance below zero.
var debitTokensScript = redis.NewScript(`
	local key = KEYS[1]
	local cost = tonumber(ARGV[1])
	local tokens = tonumber(redis.call("HGET", key, "tokens")) or 0

	if tokens < cost then
		return -1
	end

	return redis.call("HINCRBY", key, "tokens", -cost)
`)

// DebitTokens atomically deducts the redemption cost. Returns the new
// balance, or ok=false when the balance was insufficient.
func (s *RedisService) DebitTokens(userID string, cost int64) (int64, bool, error) {
	key := fmt.Sprintf(KeyUserProfile, userID)

	balance, err := debitTokensScript.Run(s.ctx, s.client, []string{key}, cost).Int64()
	if err != nil {
		return 0, false, fmt.Errorf("failed to debit tokens: %v", err)
	}
	if balance < 0 {
		return 0, false, nil
	}

	return balance, true, nil
}

// --- Redemptions ---

func (s *RedisService) SaveRedemption(req *models.RedemptionRequest) error {
	key := fmt.Sprintf(KeyRedemption, req.ID)

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal redemption: %v", err)
	}

	if err := s.client.Set(s.ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save redemption: %v", err)
	}

	score := float64(req.RequestedAt.Unix())
	userKey := fmt.Sprintf(KeyUserRedemptions, req.UserID)

	pipe := s.client.Pipeline()
	pipe.ZAdd(s.ctx, userKey, redis.Z{Score: score, Member: req.ID})
	pipe.ZRemRangeByRank(s.ctx, userKey, 0, int64(-MaxRedemptionHistory-1))
	pipe.ZAdd(s.ctx, KeyPendingRedemptions, redis.Z{Score: score, Member: req.ID})

	if _, err := pipe.Exec(s.ctx); err != nil {
		return fmt.Errorf("failed to index redemption: %v", err)
	}

	return nil
}

func (s *RedisService) GetRedemption(id string) (*models.RedemptionRequest, error) {
	key := fmt.Sprintf(KeyRedemption, id)

	data, err := s.client.Get(s.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("redemption not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get redemption: %v", err)
	}

	var req models.RedemptionRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal redemption: %v", err)
	}

	return &req, nil
}

func (s *RedisService) GetUserRedemptions(userID string, limit int64) ([]*models.RedemptionRequest, error) {
	if limit <= 0 || limit > MaxRedemptionHistory {
		limit = 50
	}

	userKey := fmt.Sprintf(KeyUserRedemptions, userID)

	ids, err := s.client.ZRevRange(s.ctx, userKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get redemption ids: %v", err)
	}

	return s.bulkGetRedemptions(ids)
}

func (s *RedisService) GetPendingRedemptions(limit int64) ([]*models.RedemptionRequest, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	ids, err := s.client.ZRange(s.ctx, KeyPendingRedemptions, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get pending redemptions: %v", err)
	}

	return s.bulkGetRedemptions(ids)
}

func (s *RedisService) bulkGetRedemptions(ids []string) ([]*models.RedemptionRequest, error) {
	if len(ids) == 0 {
		return []*models.RedemptionRequest{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))

	for i, id := range ids {
		cmds[i] = pipe.Get(s.ctx, fmt.Sprintf(KeyRedemption, id))
	}

	if _, err := pipe.Exec(s.ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("pipeline execution failed: %v", err)
	}

	var reqs []*models.RedemptionRequest
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			continue
		}

		var req models.RedemptionRequest
		if err := json.Unmarshal([]byte(data), &req); err != nil {
			continue
		}

		reqs = append(reqs, &req)
	}

	return reqs, nil
}

// completeRedemptionScript moves a redemption forward, and only forward:
// anything other than pending is left untouched.
var completeRedemptionScript = redis.NewScript(`
	local key = KEYS[1]
	local pendingIndex = KEYS[2]
	local id = ARGV[1]
	local completedAt = ARGV[2]

	local data = redis.call("GET", key)
	if not data then
		return redis.error_reply("redemption not found")
	end

	local req = cjson.decode(data)
	if req.status ~= "pending" then
		return redis.error_reply("redemption is not pending")
	end

	req.status = "completed"
	req.completed_at = completedAt

	redis.call("SET", key, cjson.encode(req))
	redis.call("ZREM", pendingIndex, id)

	return "OK"
`)

// CompleteRedemption performs the admin-side pending -> completed
// transition.
func (s *RedisService) CompleteRedemption(id string) error {
	key := fmt.Sprintf(KeyRedemption, id)
	completedAt := time.Now().UTC().Format(time.RFC3339Nano)

	return completeRedemptionScript.Run(s.ctx, s.client,
		[]string{key, KeyPendingRedemptions}, id, completedAt).Err()
}

// --- Rate limiting ---

func (s *RedisService) CheckRateLimit(userID, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, userID, action)

	count, err := s.client.Incr(s.ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count == 1 {
		s.client.Expire(s.ctx, key, window)
	}

	return count <= int64(limit), nil
}

// --- Test helpers ---

func (s *RedisService) DeleteProfile(userID string) error {
	key := fmt.Sprintf(KeyUserProfile, userID)
	return s.client.Del(s.ctx, key).Err()
}

func (s *RedisService) DeleteRedemption(id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(s.ctx, fmt.Sprintf(KeyRedemption, id))
	pipe.ZRem(s.ctx, KeyPendingRedemptions, id)
	_, err := pipe.Exec(s.ctx)
	return err
}

func (s *RedisService) ClearRateLimit(userID, action string) error {
	key := fmt.Sprintf(KeyRateLimit, userID, action)
	return s.client.Del(s.ctx, key).Err()
}
