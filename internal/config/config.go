// Package config provides small environment-variable-driven configuration
// accessors, following the teacher's style of typed getters over
// os.Getenv with documented defaults.
package config

import (
	"os"
	"strconv"
	"time"
)

const (
	defaultTrustedImageOrgPrefix = "quay.io/konflux-ci/"
	defaultCacheDir              = ".cache/pipeline-migration-tool"
	defaultHTTPTimeout           = 30 * time.Second
	defaultMaxConcurrency        = 5
)

// TrustedImageOrgPrefix is the depName prefix an upgrade must carry to be
// considered in scope, unless LocalTestMode is enabled.
func TrustedImageOrgPrefix() string {
	if v := os.Getenv("PMT_IMAGE_ORG_PREFIX"); v != "" {
		return v
	}
	return defaultTrustedImageOrgPrefix
}

// LocalTestMode disables the trusted-image-org-prefix check, for running
// against non-Konflux registries during development.
func LocalTestMode() bool {
	return os.Getenv("PMT_LOCAL_TEST") != ""
}

// CacheDir is the root directory for the file-backed registry cache.
func CacheDir() string {
	if v := os.Getenv("PMT_CACHE_DIR"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultCacheDir
	}
	return home + "/" + defaultCacheDir
}

// HTTPTimeout bounds a single registry HTTP request.
func HTTPTimeout() time.Duration {
	if v := os.Getenv("PMT_HTTP_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultHTTPTimeout
}

// MaxConcurrency bounds the number of upgrades resolved in parallel.
func MaxConcurrency() int {
	if v := os.Getenv("PMT_MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultMaxConcurrency
}

// StoragePath is the sqlite database file recording migration-application
// history.
func StoragePath() string {
	if v := os.Getenv("PMT_STORAGE_PATH"); v != "" {
		return v
	}
	return CacheDir() + "/history.db"
}
