package mirror

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/vadviktor/animefeed/internal/httpx"
	"github.com/vadviktor/animefeed/internal/site"
	"github.com/vadviktor/animefeed/internal/storage"
)

// Reporter receives non-fatal incidents worth surfacing to telemetry.
type Reporter interface {
	Error(err error)
}

// Mirror uploads assets to the object store only when their key is
// absent, then makes them publicly retrievable.
type Mirror struct {
	store  storage.ObjectStore
	client *httpx.Client
	report Reporter
	log    *zap.Logger
}

// New builds a Mirror.
func New(store storage.ObjectStore, client *httpx.Client, report Reporter, log *zap.Logger) *Mirror {
	return &Mirror{store: store, client: client, report: report, log: log}
}

// Mirror ensures the asset at sourceURL exists under key and returns its
// stable public URL. When the key already exists, no fetch or upload
// happens at all. An upload failure is fatal for the run: publishing a
// feed that references missing assets is worse than not publishing.
func (m *Mirror) Mirror(ctx context.Context, sourceURL, key string) (string, error) {
	exists, err := m.store.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("probe %s: %w", key, err)
	}
	if exists {
		m.log.Debug("asset already mirrored", zap.String("key", key))
		return m.store.PublicURL(key), nil
	}

	resp, err := m.client.Get(ctx, sourceURL)
	if err != nil {
		return "", fmt.Errorf("fetch asset %s: %w", sourceURL, err)
	}
	// A denial page arrives as a 200 body; storing it as the asset would
	// publish it in the feed.
	if site.IsAccessDenied(resp.Body) {
		return "", fmt.Errorf("fetch asset %s: %w", sourceURL, site.ErrAccessDenied)
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("fetch asset %s: unexpected status %d", sourceURL, resp.StatusCode)
	}

	contentType := http.DetectContentType(resp.Body)
	if err := m.store.Put(ctx, key, resp.Body, contentType, storage.ClassInfrequentAccess); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	// The object is durably stored at this point; a failed ACL call only
	// leaves its public visibility uncertain.
	if err := m.store.SetPublicRead(ctx, key); err != nil {
		m.log.Warn("failed to set public-read", zap.String("key", key), zap.Error(err))
		m.report.Error(fmt.Errorf("set public-read on %s: %w", key, err))
	}

	m.log.Info("mirrored asset",
		zap.String("key", key),
		zap.Int("bytes", len(resp.Body)))
	return m.store.PublicURL(key), nil
}
