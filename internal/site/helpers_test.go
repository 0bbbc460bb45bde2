package site

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadviktor/animefeed/internal/config"
	"github.com/vadviktor/animefeed/internal/httpx"
)

// newTestSession builds a session whose client neither paces nor sleeps.
func newTestSession(t *testing.T, cfg *config.Config) *Session {
	t.Helper()
	client, err := httpx.New(
		httpx.DefaultRetryPolicy(),
		httpx.PacerFunc(func() {}),
		httpx.ClientConfig{Sleep: func(_ time.Duration) {}},
		zap.NewNop(),
	)
	require.NoError(t, err)
	return NewSession(client, cfg, zap.NewNop())
}

func testConfig(base string) *config.Config {
	return &config.Config{
		Site: config.SiteConfig{
			BaseURL:              base,
			LoginURL:             base + "/login.php",
			TorrentsURL:          base + "/torrents.php",
			ListingURLTemplate:   base + "/ajax/torrents_data.php?total=%d&page=%d",
			TechnicalURLTemplate: base + "/ajax/torrent_technical?torid=%s",
			FileListURLTemplate:  base + "/ajax/torrent_filelist?hash=%s",
		},
		Crawl: config.CrawlConfig{
			PageScanLimit:        5,
			PolitenessMaxSeconds: 2,
			ExcludedCategories:   []string{"Hentai"},
		},
	}
}
