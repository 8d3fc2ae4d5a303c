package config

import "time"

type Config interface {
	EnvConfig
	BackendConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetPort() string
	GetLogLevel() string
}

type BackendConfig interface {
	GetBaseURL() string
	GetTokenPath() string
	GetRequestTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Backend
}

func New() Config {
	return mainConfig{}
}
