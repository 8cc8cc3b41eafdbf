// Package config loads application configuration from environment
// variables into tagged structs.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
// LoadEnv pulls named .env files into the process environment, Load parses
// the environment into any struct using `env` field tags, and each struct
// type is cached after its first successful parse so repeated loads are
// free.
//
//	type RedisConfig struct {
//		URL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
//	}
//
//	var cfg RedisConfig
//	config.MustLoad(&cfg)
//
// Sentinel errors (ErrParsingConfig, ErrLoadingEnvFiles, ErrNilPointer)
// support errors.Is checks. Tests that mutate the environment should call
// ResetCache between cases.
package config
