package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vadviktor/animefeed/internal/config"
	"github.com/vadviktor/animefeed/internal/feed"
	"github.com/vadviktor/animefeed/internal/httpx"
	"github.com/vadviktor/animefeed/internal/logging"
	"github.com/vadviktor/animefeed/internal/mirror"
	"github.com/vadviktor/animefeed/internal/pipeline"
	"github.com/vadviktor/animefeed/internal/secrets"
	"github.com/vadviktor/animefeed/internal/site"
	"github.com/vadviktor/animefeed/internal/storage/miniostore"
	"github.com/vadviktor/animefeed/internal/telemetry"
)

// newCrawlCmd creates and configures the 'crawl' subcommand, which
// executes one full crawl-and-publish run.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Runs one crawl and publishes the feed",
		Long: `Logs in, enumerates the configured number of listing pages, extracts
each item, mirrors its assets and publishes the assembled Atom feed.`,
		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck // stderr sync failure is unactionable
	defer log.Info("script end")

	report := telemetry.New(cfg.Telemetry, log)
	defer report.Flush(cmd.Context())

	p, err := buildPipeline(&cfg, log, report)
	if err != nil {
		report.Error(err)
		return err
	}

	return p.Run(cmd.Context())
}

// buildPipeline wires every collaborator from configuration.
func buildPipeline(cfg *config.Config, log *zap.Logger, report *telemetry.Reporter) (*pipeline.Pipeline, error) {
	store, err := miniostore.New(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init object store: %w", err)
	}

	policy := httpx.NewRetryPolicy(
		cfg.HTTP.MaxAttempts,
		time.Duration(cfg.HTTP.BackoffBaseSeconds)*time.Second,
		cfg.HTTP.BackoffMultiplier,
	)
	client, err := httpx.New(
		policy,
		httpx.NewRandomPacer(cfg.Crawl.PolitenessMaxSeconds),
		httpx.ClientConfig{UserAgent: cfg.Site.UserAgent},
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("init http client: %w", err)
	}

	session := site.NewSession(client, cfg, log)
	enum := site.NewEnumerator(session, cfg, log)
	extractor := site.NewExtractor(session, cfg, log)
	assetMirror := mirror.New(store, client, report, log)
	publisher := feed.NewPublisher(store, cfg.Feed.Key(), report, log)
	assembler := feed.NewAssembler(cfg.Feed, publisher.PublicURL())
	secretStore := secrets.NewEnvStore(cfg.Secrets.EnvFile)

	return pipeline.New(cfg, log, secretStore, report,
		session, enum, extractor, assetMirror, assembler, publisher), nil
}
