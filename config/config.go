// Package config provides centralized configuration for the JSONDB engine.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all engine-level configuration values.
type Config struct {
	RootDir        string        // Root directory holding <root>/servers and <root>/config
	LockPollEvery  time.Duration // Bounded-poll interval while waiting on a table lock
	LockTimeout    time.Duration // Total time to wait for a table lock before giving up
	CacheEnabled   bool          // Whether the process-wide table cache is used
	MaxQueryDepth  int           // Read from JSONDB_MAX_QUERY_DEPTH; the parser does not consult it and does not limit nesting depth
	DefaultLimit   int           // limit() rows used when select has no explicit limit extension
	DirPermissions os.FileMode   // Permissions applied to created server/database directories
	FilePermissions os.FileMode  // Permissions applied to created table/lock files
}

// Cfg is the global configuration instance, loaded at startup.
var Cfg Config

func init() {
	// Load .env file before reading config (ignore error if file doesn't exist).
	godotenv.Load()
	Cfg = Load()
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	lockPollEvery := 100 * time.Millisecond
	if val := os.Getenv("JSONDB_LOCK_POLL_MS"); val != "" {
		if ms, err := strconv.Atoi(val); err == nil && ms > 0 {
			lockPollEvery = time.Duration(ms) * time.Millisecond
		}
	}

	lockTimeout := 5 * time.Second
	if val := os.Getenv("JSONDB_LOCK_TIMEOUT_MS"); val != "" {
		if ms, err := strconv.Atoi(val); err == nil && ms > 0 {
			lockTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	maxQueryDepth := 5
	if val := os.Getenv("JSONDB_MAX_QUERY_DEPTH"); val != "" {
		if d, err := strconv.Atoi(val); err == nil && d > 0 {
			maxQueryDepth = d
		}
	}

	defaultLimit := 0
	if val := os.Getenv("JSONDB_DEFAULT_LIMIT"); val != "" {
		if l, err := strconv.Atoi(val); err == nil && l >= 0 {
			defaultLimit = l
		}
	}

	return Config{
		RootDir:         getEnv("JSONDB_ROOT", "."),
		LockPollEvery:   lockPollEvery,
		LockTimeout:     lockTimeout,
		CacheEnabled:    getEnv("JSONDB_CACHE_DISABLED", "") == "",
		MaxQueryDepth:   maxQueryDepth,
		DefaultLimit:    defaultLimit,
		DirPermissions:  0o777,
		FilePermissions: 0o777,
	}
}

// getEnv returns the environment variable value or a default if not set.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
