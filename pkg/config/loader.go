package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]any)

	defaultEnvLoaded sync.Once
)

// LoadEnv loads the named .env files into the process environment before
// any struct parsing. Missing files are an error; call it only for files
// that must exist.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFiles, err)
	}
	return nil
}

// Load parses environment variables into the provided struct based on its
// `env` field tags. A default .env file is loaded once per process if
// present. Each struct type is parsed once and served from cache on
// subsequent calls, so config reads stay cheap on hot paths.
//
// Example:
//
//	type PostgresConfig struct {
//		DSN string `env:"POSTGRES_DSN,required"`
//	}
//
//	var cfg PostgresConfig
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	defaultEnvLoaded.Do(func() {
		// The default .env is optional.
		_ = godotenv.Load()
	})

	key := typeName[T]()

	cacheMu.RLock()
	cached, ok := cache[key]
	cacheMu.RUnlock()
	if ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	cacheMu.Lock()
	// A concurrent loader may have won; prefer its copy so every caller
	// observes one consistent value.
	if cached, ok := cache[key]; ok {
		*v = cached.(T)
	} else {
		cache[key] = *v
	}
	cacheMu.Unlock()
	return nil
}

// MustLoad works like Load but panics on failure, for configuration the
// process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: failed to load required configuration: %v", err))
	}
}

// ResetCache drops all cached configs so the next Load re-parses the
// environment. Intended for tests that mutate env vars.
func ResetCache() {
	cacheMu.Lock()
	cache = make(map[string]any)
	cacheMu.Unlock()
}

func typeName[T any]() string {
	var zero T
	if t := reflect.TypeOf(zero); t != nil {
		return t.String()
	}
	return fmt.Sprintf("%T", *new(T))
}
