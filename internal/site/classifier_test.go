package site

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsAccessDenied(t *testing.T) {
	t.Parallel()
	require.True(t, IsAccessDenied([]byte(`<html><body>Access Denied!</body></html>`)))
	require.False(t, IsAccessDenied([]byte(`<html><body>access denied</body></html>`)))
	require.False(t, IsAccessDenied([]byte(`<html><body>all good</body></html>`)))
}

func TestIsTorrentNotFound(t *testing.T) {
	t.Parallel()
	require.True(t, IsTorrentNotFound([]byte(`<p>Torrent not found</p>`)))
	require.True(t, IsTorrentNotFound([]byte(`<p>The torrent you are looking for does not exist.</p>`)))
	require.False(t, IsTorrentNotFound([]byte(`<p>torrent found</p>`)))
}

func TestIsInvalidLogin(t *testing.T) {
	t.Parallel()
	require.True(t, IsInvalidLogin([]byte(`<div class="error">Invalid username or password</div>`)))
	require.False(t, IsInvalidLogin([]byte(`<div>Welcome back!</div>`)))
}
