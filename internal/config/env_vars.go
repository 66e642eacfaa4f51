package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/jrsteele09/go-admin-console/phase"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	envVar        = "ENV"
	apiPathEnvVar = "BASE_API_PATH"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Admin Console")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "DEV")
}

// GetPhase derives the deployment phase from ENV.
func (e EnvVars) GetPhase() phase.Phase {
	return phase.Parse(e.GetEnv())
}

// GetBaseAPIPath is the prefix that marks programmatic API requests. Requests
// under it skip menu authorization.
func (EnvVars) GetBaseAPIPath() string {
	p := GetEnv(apiPathEnvVar, "/api")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimSuffix(p, "/")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
