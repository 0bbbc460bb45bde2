// Package secrets resolves site credentials from an external secret source.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Credentials is a username/password pair. It is fetched once before
// authentication and must never be persisted.
type Credentials struct {
	Username string
	Password string
}

// Store retrieves named credentials. Any failure here is fatal for the
// run; callers report it to telemetry before propagating.
type Store interface {
	Get(ctx context.Context, name string) (Credentials, error)
}

// EnvStore reads credentials from the process environment, optionally
// primed from a .env file. The secret name is uppercased and used as a
// variable prefix: <NAME>_USERNAME / <NAME>_PASSWORD.
type EnvStore struct {
	envFile string
}

// NewEnvStore builds an EnvStore. envFile may be empty.
func NewEnvStore(envFile string) *EnvStore {
	return &EnvStore{envFile: envFile}
}

// Get resolves the named credential pair.
func (s *EnvStore) Get(_ context.Context, name string) (Credentials, error) {
	if s.envFile != "" {
		if err := godotenv.Load(s.envFile); err != nil {
			return Credentials{}, fmt.Errorf("load env file %s: %w", s.envFile, err)
		}
	}

	prefix := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	username := os.Getenv(prefix + "_USERNAME")
	password := os.Getenv(prefix + "_PASSWORD")
	if username == "" || password == "" {
		return Credentials{}, fmt.Errorf("secret %s: username or password not set", name)
	}

	return Credentials{Username: username, Password: password}, nil
}
