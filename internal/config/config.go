package config

import "github.com/jrsteele09/go-admin-console/phase"

type Config interface {
	EnvConfig
	SecurityConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetPhase() phase.Phase
	GetBaseAPIPath() string
}

type mainConfig struct {
	EnvVars
	Security
	Stores
}

func New() Config {
	return mainConfig{}
}
