package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TapRewardTokens != 1 {
		t.Errorf("Expected tap reward 1, got %d", cfg.TapRewardTokens)
	}
	if cfg.TapsPerSpinUnlock != 10 {
		t.Errorf("Expected 10 taps per unlock, got %d", cfg.TapsPerSpinUnlock)
	}
	if cfg.SpinGrantSize != 5 {
		t.Errorf("Expected spin grant 5, got %d", cfg.SpinGrantSize)
	}
	if cfg.RedeemCostTokens != 1000 {
		t.Errorf("Expected redeem cost 1000, got %d", cfg.RedeemCostTokens)
	}
	if cfg.RedeemDiamonds != 100 {
		t.Errorf("Expected 100 diamonds, got %d", cfg.RedeemDiamonds)
	}
	if cfg.AdTickCount != 5 || cfg.AdTickInterval != time.Second {
		t.Errorf("Expected 5x1s ad gate, got %dx%v", cfg.AdTickCount, cfg.AdTickInterval)
	}

	want := []int64{10, 20, 5, 50, 15, 0, 25}
	if len(cfg.SpinWheel) != len(want) {
		t.Fatalf("Expected wheel %v, got %v", want, cfg.SpinWheel)
	}
	for i, v := range want {
		if cfg.SpinWheel[i] != v {
			t.Errorf("Wheel slot %d: expected %d, got %d", i, v, cfg.SpinWheel[i])
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TAPS_PER_SPIN_UNLOCK", "3")
	t.Setenv("SPIN_WHEEL", "1, 2, 0")
	t.Setenv("SPIN_SETTLE_DELAY", "500ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TapsPerSpinUnlock != 3 {
		t.Errorf("Expected override 3, got %d", cfg.TapsPerSpinUnlock)
	}
	if len(cfg.SpinWheel) != 3 || cfg.SpinWheel[2] != 0 {
		t.Errorf("Expected wheel [1 2 0], got %v", cfg.SpinWheel)
	}
	if cfg.SpinSettleDelay != 500*time.Millisecond {
		t.Errorf("Expected 500ms settle delay, got %v", cfg.SpinSettleDelay)
	}
}

func TestParseWheel(t *testing.T) {
	if _, err := parseWheel(""); err == nil {
		t.Error("Empty wheel must be rejected")
	}
	if _, err := parseWheel("10,20,30"); err == nil {
		t.Error("Wheel without a bust slot must be rejected")
	}
	if _, err := parseWheel("10,-5,0"); err == nil {
		t.Error("Negative payout must be rejected")
	}
	if _, err := parseWheel("10,abc,0"); err == nil {
		t.Error("Non-numeric entry must be rejected")
	}

	wheel, err := parseWheel("0")
	if err != nil {
		t.Fatalf("Single bust slot should parse: %v", err)
	}
	if len(wheel) != 1 || wheel[0] != 0 {
		t.Errorf("Expected [0], got %v", wheel)
	}
}

func TestInvalidEnvValues(t *testing.T) {
	t.Setenv("TAPS_PER_SPIN_UNLOCK", "zero")
	if _, err := Load(); err == nil {
		t.Error("Non-numeric TAPS_PER_SPIN_UNLOCK must fail")
	}

	t.Setenv("TAPS_PER_SPIN_UNLOCK", "0")
	if _, err := Load(); err == nil {
		t.Error("Zero TAPS_PER_SPIN_UNLOCK must fail")
	}
}
