// Package pipeline orchestrates one crawl-extract-mirror-publish run.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vadviktor/animefeed/internal/config"
	"github.com/vadviktor/animefeed/internal/feed"
	"github.com/vadviktor/animefeed/internal/mirror"
	"github.com/vadviktor/animefeed/internal/secrets"
	"github.com/vadviktor/animefeed/internal/site"
)

// Reporter is the telemetry surface the pipeline needs.
type Reporter interface {
	Heartbeat(name string, value float64)
	Error(err error)
}

// Pipeline runs the whole crawl strictly sequentially. Concurrency is
// deliberately absent: parallel requests would defeat the politeness
// pacing that keeps the upstream from blocking the crawler.
type Pipeline struct {
	cfg       *config.Config
	log       *zap.Logger
	secrets   secrets.Store
	report    Reporter
	session   *site.Session
	enum      *site.Enumerator
	extractor *site.Extractor
	mirror    *mirror.Mirror
	assembler *feed.Assembler
	publisher *feed.Publisher
}

// New wires a Pipeline from its collaborators.
func New(
	cfg *config.Config,
	log *zap.Logger,
	secretStore secrets.Store,
	report Reporter,
	session *site.Session,
	enum *site.Enumerator,
	extractor *site.Extractor,
	assetMirror *mirror.Mirror,
	assembler *feed.Assembler,
	publisher *feed.Publisher,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		log:       log,
		secrets:   secretStore,
		report:    report,
		session:   session,
		enum:      enum,
		extractor: extractor,
		mirror:    assetMirror,
		assembler: assembler,
		publisher: publisher,
	}
}

// Run executes one complete crawl. Any fatal condition is reported to
// telemetry and returned; the feed is all-or-nothing per run, so nothing
// is published on abort.
func (p *Pipeline) Run(ctx context.Context) error {
	log := p.log.With(zap.String("run_id", uuid.NewString()))
	log.Info("run starting", zap.String("environment", p.cfg.Feed.Environment))

	creds, err := p.secrets.Get(ctx, p.cfg.Secrets.Name)
	if err != nil {
		return p.fatal(fmt.Errorf("get credentials: %w", err))
	}

	if err := p.session.Login(ctx, creds); err != nil {
		return p.fatal(err)
	}

	maxPage, err := p.enum.DiscoverMaxPage(ctx)
	if err != nil {
		return p.fatal(err)
	}
	pages := maxPage
	if pages > p.cfg.Crawl.PageScanLimit {
		pages = p.cfg.Crawl.PageScanLimit
		log.Info("capping crawl",
			zap.Int("max_page", maxPage),
			zap.Int("page_scan_limit", pages))
	}

	var extracted, skipped int
	for page := 1; page <= pages; page++ {
		links, err := p.enum.PageLinks(ctx, maxPage, page)
		if err != nil {
			return p.fatal(err)
		}

		for _, link := range links {
			res, err := p.extractor.Extract(ctx, link)
			if err != nil {
				return p.fatal(err)
			}
			if res.Skipped {
				skipped++
				continue
			}

			assets, err := p.mirrorAssets(ctx, res.Record)
			if err != nil {
				return p.fatal(err)
			}
			if err := p.assembler.Add(res.Record, assets); err != nil {
				return p.fatal(err)
			}
			extracted++
		}
	}

	doc, err := p.assembler.Document()
	if err != nil {
		return p.fatal(err)
	}
	if err := p.publisher.Publish(ctx, doc); err != nil {
		return p.fatal(err)
	}

	p.report.Heartbeat("pages_crawled", float64(pages))
	p.report.Heartbeat("entries_published", float64(extracted))
	p.report.Heartbeat("items_skipped", float64(skipped))

	log.Info("run finished",
		zap.Int("pages", pages),
		zap.Int("entries", extracted),
		zap.Int("skipped", skipped),
		zap.String("feed_url", p.publisher.PublicURL()))
	return nil
}

// mirrorAssets mirrors every asset a record references and resolves
// their public URLs.
func (p *Pipeline) mirrorAssets(ctx context.Context, rec *site.Record) (feed.Assets, error) {
	var assets feed.Assets

	if rec.CoverURL != "" {
		key, err := mirror.CoverKey(rec.CoverURL)
		if err != nil {
			return feed.Assets{}, fmt.Errorf("item %s: %w", rec.ID, err)
		}
		assets.CoverURL, err = p.mirror.Mirror(ctx, rec.CoverURL, key)
		if err != nil {
			return feed.Assets{}, fmt.Errorf("item %s: %w", rec.ID, err)
		}
	}

	for _, thumb := range rec.Thumbnails {
		smallKey, err := mirror.ThumbKey(mirror.ThumbSmall, thumb.Small)
		if err != nil {
			return feed.Assets{}, fmt.Errorf("item %s: %w", rec.ID, err)
		}
		smallURL, err := p.mirror.Mirror(ctx, thumb.Small, smallKey)
		if err != nil {
			return feed.Assets{}, fmt.Errorf("item %s: %w", rec.ID, err)
		}

		largeKey, err := mirror.ThumbKey(mirror.ThumbLarge, thumb.Large)
		if err != nil {
			return feed.Assets{}, fmt.Errorf("item %s: %w", rec.ID, err)
		}
		largeURL, err := p.mirror.Mirror(ctx, thumb.Large, largeKey)
		if err != nil {
			return feed.Assets{}, fmt.Errorf("item %s: %w", rec.ID, err)
		}

		assets.Thumbnails = append(assets.Thumbnails, feed.ThumbLink{
			SmallURL: smallURL,
			LargeURL: largeURL,
		})
	}

	downloadKey := mirror.DownloadKey(rec.PublishedAt, rec.Title, rec.ID)
	downloadURL, err := p.mirror.Mirror(ctx, rec.DownloadURL, downloadKey)
	if err != nil {
		return feed.Assets{}, fmt.Errorf("item %s: %w", rec.ID, err)
	}
	assets.DownloadURL = downloadURL

	return assets, nil
}

func (p *Pipeline) fatal(err error) error {
	p.report.Error(err)
	return err
}
