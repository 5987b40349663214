package config

import "testing"

func TestTrustedImageOrgPrefixDefault(t *testing.T) {
	t.Setenv("PMT_IMAGE_ORG_PREFIX", "")
	if got := TrustedImageOrgPrefix(); got != defaultTrustedImageOrgPrefix {
		t.Errorf("TrustedImageOrgPrefix() = %q, want %q", got, defaultTrustedImageOrgPrefix)
	}
}

func TestTrustedImageOrgPrefixOverride(t *testing.T) {
	t.Setenv("PMT_IMAGE_ORG_PREFIX", "quay.io/myorg/")
	if got := TrustedImageOrgPrefix(); got != "quay.io/myorg/" {
		t.Errorf("TrustedImageOrgPrefix() = %q, want override", got)
	}
}

func TestLocalTestMode(t *testing.T) {
	t.Setenv("PMT_LOCAL_TEST", "")
	if LocalTestMode() {
		t.Error("LocalTestMode() = true, want false when unset")
	}
	t.Setenv("PMT_LOCAL_TEST", "1")
	if !LocalTestMode() {
		t.Error("LocalTestMode() = false, want true when set")
	}
}

func TestMaxConcurrencyDefaultAndOverride(t *testing.T) {
	t.Setenv("PMT_MAX_CONCURRENCY", "")
	if got := MaxConcurrency(); got != defaultMaxConcurrency {
		t.Errorf("MaxConcurrency() = %d, want %d", got, defaultMaxConcurrency)
	}
	t.Setenv("PMT_MAX_CONCURRENCY", "12")
	if got := MaxConcurrency(); got != 12 {
		t.Errorf("MaxConcurrency() = %d, want 12", got)
	}
	t.Setenv("PMT_MAX_CONCURRENCY", "not-a-number")
	if got := MaxConcurrency(); got != defaultMaxConcurrency {
		t.Errorf("MaxConcurrency() with invalid value = %d, want default %d", got, defaultMaxConcurrency)
	}
}
