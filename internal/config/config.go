// Package config reads badgr client settings from the process environment.
// Environment lookup lives here, outside the SDK core: the core only ever
// sees an explicit badgr.Config.
package config

import (
	"os"

	"github.com/jrsteele09/go-badgr-client/badgr"
)

const (
	usernameVar     = "BADGR_USERNAME"
	passwordVar     = "BADGR_PASSWORD"
	clientIDVar     = "BADGR_CLIENT_ID"
	scopeVar        = "BADGR_SCOPE"
	baseURLVar      = "BADGR_BASE_URL"
	tokenVar        = "BADGR_TOKEN"
	refreshTokenVar = "BADGR_REFRESH_TOKEN"
	uniqueNamesVar  = "BADGR_UNIQUE_BADGE_NAMES"
)

// FromEnv builds a badgr.Config from BADGR_* environment variables.
func FromEnv() badgr.Config {
	return badgr.Config{
		Username:         os.Getenv(usernameVar),
		Password:         os.Getenv(passwordVar),
		ClientID:         GetEnv(clientIDVar, "public"),
		Scope:            os.Getenv(scopeVar),
		BaseURL:          os.Getenv(baseURLVar),
		Token:            os.Getenv(tokenVar),
		RefreshToken:     os.Getenv(refreshTokenVar),
		UniqueBadgeNames: os.Getenv(uniqueNamesVar) == "true",
	}
}

// GetEnv returns the value of envVar, or defaultValue when unset or empty.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
