package secrets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvStoreGet(t *testing.T) {
	t.Setenv("ANIMEFEED_USERNAME", "crawler")
	t.Setenv("ANIMEFEED_PASSWORD", "hunter2")

	creds, err := NewEnvStore("").Get(context.Background(), "animefeed")
	require.NoError(t, err)
	require.Equal(t, Credentials{Username: "crawler", Password: "hunter2"}, creds)
}

func TestEnvStoreMissingPassword(t *testing.T) {
	t.Setenv("ANIMEFEED_USERNAME", "crawler")
	t.Setenv("ANIMEFEED_PASSWORD", "")

	_, err := NewEnvStore("").Get(context.Background(), "animefeed")
	require.ErrorContains(t, err, "not set")
}

func TestEnvStoreLoadsDotEnv(t *testing.T) {
	t.Setenv("SITE_USERNAME", "")
	t.Setenv("SITE_PASSWORD", "")
	os.Unsetenv("SITE_USERNAME")
	os.Unsetenv("SITE_PASSWORD")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SITE_USERNAME=u\nSITE_PASSWORD=p\n"), 0o600))

	creds, err := NewEnvStore(path).Get(context.Background(), "site")
	require.NoError(t, err)
	require.Equal(t, "u", creds.Username)
	require.Equal(t, "p", creds.Password)
}

func TestEnvStoreMissingFileIsFatal(t *testing.T) {
	_, err := NewEnvStore(filepath.Join(t.TempDir(), "nope.env")).Get(context.Background(), "site")
	require.Error(t, err)
}
