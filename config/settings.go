package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBackendBaseURL = "https://wedding-card-be.onrender.com"
	defaultSessionTTL     = 24 * time.Hour
)

// BackendBaseURL is the REST backend every admin screen talks to.
//
// Set via env:
// - BACKEND_BASE_URL=https://wedding-card-be.onrender.com
func BackendBaseURL() string {
	v := strings.TrimSpace(os.Getenv("BACKEND_BASE_URL"))
	if v == "" {
		return defaultBackendBaseURL
	}
	return strings.TrimRight(v, "/")
}

func BackendTimeout() time.Duration {
	return time.Duration(IntFromEnv("BACKEND_TIMEOUT_SECONDS", 30)) * time.Second
}

// SessionTTL caps the lifetime of an admin session. The upstream token expiry
// still wins when it is earlier.
func SessionTTL() time.Duration {
	hours := IntFromEnv("SESSION_TTL_HOURS", 0)
	if hours <= 0 {
		return defaultSessionTTL
	}
	return time.Duration(hours) * time.Hour
}

func IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production")
}

// PhoneDefaultRegion is used to parse user contacts stored without a country prefix.
func PhoneDefaultRegion() string {
	v := strings.ToUpper(strings.TrimSpace(os.Getenv("PHONE_DEFAULT_REGION")))
	if v == "" {
		return "IN"
	}
	return v
}

// ActivityLogEnabled is true when a MySQL database is configured for the admin activity log.
func ActivityLogEnabled() bool {
	return strings.TrimSpace(os.Getenv("DB_HOST")) != ""
}

func BoolFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

func IntFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
