package config

import (
	"encoding/base64"
	"fmt"
	"strconv"
)

const (
	tokenSecretEnvVar       = "ADMIN_TOKEN_SECRET"
	secureCookieEnvVar      = "SECURE_COOKIE"
	bootstrapPasswordEnvVar = "ADMIN_BOOTSTRAP_PASSWORD"

	// DefaultTokenSecret is the base64 signing secret used when none is
	// configured. Tokens issued by older deployments verify against it.
	DefaultTokenSecret = "YXhib290"

	// DefaultCookieName carries the session token.
	DefaultCookieName = "ADMIN_AUTH_TOKEN"
)

type SecurityConfig interface {
	GetTokenSecret() ([]byte, error)
	IsDefaultTokenSecret() bool
	GetCookieName() string
	GetSecureCookie() bool
	GetBootstrapPassword() string
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetTokenSecret decodes ADMIN_TOKEN_SECRET. Only an unset variable yields
// DefaultTokenSecret; a value that is set but does not decode is an error.
func (s Security) GetTokenSecret() ([]byte, error) {
	raw := GetEnv(tokenSecretEnvVar, DefaultTokenSecret)
	secret, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("[Security GetTokenSecret] %s is not valid base64: %w", tokenSecretEnvVar, err)
	}
	return secret, nil
}

func (Security) IsDefaultTokenSecret() bool {
	return GetEnv(tokenSecretEnvVar, DefaultTokenSecret) == DefaultTokenSecret
}

func (Security) GetCookieName() string {
	return DefaultCookieName
}

func (Security) GetSecureCookie() bool {
	v, err := strconv.ParseBool(GetEnv(secureCookieEnvVar, "false"))
	return err == nil && v
}

// GetBootstrapPassword is the initial password of the seeded system user.
// Empty means one is generated.
func (Security) GetBootstrapPassword() string {
	return GetEnv(bootstrapPasswordEnvVar, "")
}
