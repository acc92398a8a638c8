package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the service reads from the environment. Reward
// tuning lives here so changing the wheel or the redemption price never
// touches engine code.
type Config struct {
	Env  string
	Port string

	RedisURL  string
	RedisPass string
	RedisDB   int

	JWTSecret string
	AdminKey  string

	TapRewardTokens   int64
	TapsPerSpinUnlock int64
	SpinGrantSize     int64
	SpinWheel         []int64
	RedeemCostTokens  int64
	RedeemDiamonds    int64

	AdTickCount     int
	AdTickInterval  time.Duration
	SpinSettleDelay time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:       getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "8080"),
		RedisURL:  getEnv("REDIS_URL", "localhost:6379"),
		RedisPass: getEnv("REDIS_PASSWORD", ""),
		JWTSecret: getEnv("JWT_SECRET", ""),
		AdminKey:  getEnv("ADMIN_KEY", ""),
	}

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	if cfg.TapRewardTokens, err = getEnvInt64("TAP_REWARD_TOKENS", 1); err != nil {
		return nil, err
	}
	if cfg.TapsPerSpinUnlock, err = getEnvInt64("TAPS_PER_SPIN_UNLOCK", 10); err != nil {
		return nil, err
	}
	if cfg.SpinGrantSize, err = getEnvInt64("SPIN_GRANT_SIZE", 5); err != nil {
		return nil, err
	}
	if cfg.RedeemCostTokens, err = getEnvInt64("REDEEM_COST_TOKENS", 1000); err != nil {
		return nil, err
	}
	if cfg.RedeemDiamonds, err = getEnvInt64("REDEEM_DIAMONDS", 100); err != nil {
		return nil, err
	}

	if cfg.AdTickCount, err = getEnvInt("AD_TICK_COUNT", 5); err != nil {
		return nil, err
	}
	if cfg.AdTickInterval, err = getEnvDuration("AD_TICK_INTERVAL", time.Second); err != nil {
		return nil, err
	}
	if cfg.SpinSettleDelay, err = getEnvDuration("SPIN_SETTLE_DELAY", 2*time.Second); err != nil {
		return nil, err
	}

	if cfg.SpinWheel, err = parseWheel(getEnv("SPIN_WHEEL", "10,20,5,50,15,0,25")); err != nil {
		return nil, err
	}

	if cfg.Env == "production" && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	if cfg.TapsPerSpinUnlock < 1 {
		return nil, fmt.Errorf("TAPS_PER_SPIN_UNLOCK must be at least 1")
	}

	return cfg, nil
}

// parseWheel parses a comma-separated payout list. The wheel must keep at
// least one zero-payout slot so its expected value stays below face value.
func parseWheel(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	wheel := make([]int64, 0, len(parts))
	hasBust := false

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SPIN_WHEEL entry %q: %v", p, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("SPIN_WHEEL entries must be non-negative, got %d", v)
		}
		if v == 0 {
			hasBust = true
		}
		wheel = append(wheel, v)
	}

	if len(wheel) == 0 {
		return nil, fmt.Errorf("SPIN_WHEEL must not be empty")
	}
	if !hasBust {
		return nil, fmt.Errorf("SPIN_WHEEL must contain at least one 0 payout")
	}

	return wheel, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return d, nil
}
