package mirror

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadviktor/animefeed/internal/httpx"
	"github.com/vadviktor/animefeed/internal/site"
	"github.com/vadviktor/animefeed/internal/storage"
	"github.com/vadviktor/animefeed/internal/storage/memory"
)

type recordingReporter struct {
	errors []error
}

func (r *recordingReporter) Error(err error) { r.errors = append(r.errors, err) }

func newTestMirror(t *testing.T, store storage.ObjectStore, report Reporter) *Mirror {
	t.Helper()
	client, err := httpx.New(
		httpx.DefaultRetryPolicy(),
		httpx.PacerFunc(func() {}),
		httpx.ClientConfig{Sleep: func(_ time.Duration) {}},
		zap.NewNop(),
	)
	require.NoError(t, err)
	return New(store, client, report, zap.NewNop())
}

func TestMirrorUploadsAbsentAsset(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	store := memory.NewStore()
	m := newTestMirror(t, store, &recordingReporter{})

	url, err := m.Mirror(context.Background(), srv.URL+"/covers/2019/06/a.jpg", "covers/2019/06/a.jpg")
	require.NoError(t, err)
	require.Equal(t, "memory://covers/2019/06/a.jpg", url)

	obj, ok := store.Get("covers/2019/06/a.jpg")
	require.True(t, ok)
	require.Equal(t, []byte("image-bytes"), obj.Data)
	require.Equal(t, storage.ClassInfrequentAccess, obj.Class)
	require.True(t, obj.PublicRead)
}

func TestMirrorSkipsExistingKey(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fetches.Add(1)
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	store := memory.NewStore()
	store.Seed("covers/2019/06/a.jpg", []byte("already-there"))
	m := newTestMirror(t, store, &recordingReporter{})

	url, err := m.Mirror(context.Background(), srv.URL+"/covers/2019/06/a.jpg", "covers/2019/06/a.jpg")
	require.NoError(t, err)
	require.Equal(t, "memory://covers/2019/06/a.jpg", url)

	require.EqualValues(t, 0, fetches.Load(), "existing key must short-circuit the fetch")
	require.Equal(t, 0, store.PutCalls())
	require.Equal(t, 1, store.ExistsCalls())
}

func TestMirrorACLFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	store := memory.NewStore()
	store.FailACL = true
	report := &recordingReporter{}
	m := newTestMirror(t, store, report)

	url, err := m.Mirror(context.Background(), srv.URL+"/covers/2019/06/a.jpg", "covers/2019/06/a.jpg")
	require.NoError(t, err)
	require.NotEmpty(t, url)
	require.Len(t, report.errors, 1)
}

func TestMirrorRejectsDeniedAssetBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Access Denied!"))
	}))
	defer srv.Close()

	store := memory.NewStore()
	m := newTestMirror(t, store, &recordingReporter{})

	_, err := m.Mirror(context.Background(), srv.URL+"/download.php?torid=f00dcafe", "torrents/2019/06/x_1.torrent")
	require.ErrorIs(t, err, site.ErrAccessDenied)
	require.Equal(t, 0, store.PutCalls(), "a denial page must never be stored as the asset")
}

func TestMirrorFetchFailureIsFatal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	store := memory.NewStore()
	m := newTestMirror(t, store, &recordingReporter{})

	_, err := m.Mirror(context.Background(), srv.URL+"/covers/2019/06/a.jpg", "covers/2019/06/a.jpg")
	require.Error(t, err)
	require.Equal(t, 0, store.PutCalls())
}
