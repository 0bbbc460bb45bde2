package feed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vadviktor/animefeed/internal/storage"
)

// Reporter receives non-fatal incidents worth surfacing to telemetry.
type Reporter interface {
	Error(err error)
}

// Publisher writes the serialized feed to its fixed object key and sets
// public readability.
type Publisher struct {
	store  storage.ObjectStore
	key    string
	report Reporter
	log    *zap.Logger
}

// NewPublisher builds a Publisher for the given feed key.
func NewPublisher(store storage.ObjectStore, key string, report Reporter, log *zap.Logger) *Publisher {
	return &Publisher{store: store, key: key, report: report, log: log}
}

// PublicURL returns the URL the feed is served from.
func (p *Publisher) PublicURL() string {
	return p.store.PublicURL(p.key)
}

// Publish uploads the document. A failed upload is fatal; a failed
// public-read call is reported only, since the document is already live
// at its key.
func (p *Publisher) Publish(ctx context.Context, doc []byte) error {
	if err := p.store.Put(ctx, p.key, doc, "application/atom+xml; charset=utf-8", storage.ClassStandard); err != nil {
		return fmt.Errorf("publish feed: %w", err)
	}

	if err := p.store.SetPublicRead(ctx, p.key); err != nil {
		p.log.Warn("failed to set public-read on feed", zap.String("key", p.key), zap.Error(err))
		p.report.Error(fmt.Errorf("set public-read on feed %s: %w", p.key, err))
	}

	p.log.Info("published feed",
		zap.String("key", p.key),
		zap.Int("bytes", len(doc)))
	return nil
}
