package conf

import (
	"os"
)

const (
	ENV_LOG_LEVEL = "LOG_LEVEL"

	// defaults
	LOG_LEVEL_INFO = "info"
)

// EnvConf - embeddable base for env-driven package confs
type EnvConf struct{}

func NewEnvConf() EnvConf {
	return EnvConf{}
}

func (c EnvConf) GetEnv(env, fallback string) string {
	return GetEnv(env, fallback)
}

func GetEnv(env, fallback string) string {
	if value, ok := os.LookupEnv(env); ok {
		return value
	}
	return fallback
}
