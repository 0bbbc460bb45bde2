package site

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/vadviktor/animefeed/internal/config"
)

// maxPageRe matches the pagination marker embedded in the bootstrap
// listing page, e.g. ajax/torrents_data.php?total=7&page=1.
var maxPageRe = regexp.MustCompile(`torrents_data\.php\?total=(\d+)&page=1`)

// Enumerator discovers the page count and yields item-detail links
// across the paginated listing.
type Enumerator struct {
	session *Session
	cfg     *config.Config
	log     *zap.Logger
}

// NewEnumerator builds an Enumerator on an authenticated session.
func NewEnumerator(session *Session, cfg *config.Config, log *zap.Logger) *Enumerator {
	return &Enumerator{session: session, cfg: cfg, log: log}
}

// DiscoverMaxPage fetches the bootstrap listing page and extracts the
// total page count from its pagination marker. The count is fixed for
// the whole run even if the upstream total changes mid-crawl.
func (e *Enumerator) DiscoverMaxPage(ctx context.Context) (int, error) {
	resp, err := e.session.Client().Get(ctx, e.cfg.Site.TorrentsURL)
	if err != nil {
		return 0, fmt.Errorf("fetch listing bootstrap: %w", err)
	}
	if IsAccessDenied(resp.Body) {
		return 0, fmt.Errorf("listing bootstrap: %w", ErrAccessDenied)
	}
	if resp.StatusCode != 200 {
		return 0, fmt.Errorf("listing bootstrap: unexpected status %d", resp.StatusCode)
	}

	m := maxPageRe.FindSubmatch(resp.Body)
	if m == nil {
		return 0, ErrPaginationDiscovery
	}
	total, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, fmt.Errorf("parse pagination total: %w", err)
	}

	e.log.Info("discovered listing size", zap.Int("max_page", total))
	return total, nil
}

// PageLinks fetches one AJAX listing page and returns its item-detail
// links in document order. A denial marker here is fatal for the whole
// run: a blocked listing page means silently missing items otherwise.
func (e *Enumerator) PageLinks(ctx context.Context, maxPage, page int) ([]string, error) {
	listURL := fmt.Sprintf(e.cfg.Site.ListingURLTemplate, maxPage, page)
	resp, err := e.session.Client().GetAJAX(ctx, listURL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing page %d: %w", page, err)
	}
	if IsAccessDenied(resp.Body) {
		return nil, fmt.Errorf("listing page %d: %w", page, ErrAccessDenied)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("listing page %d: unexpected status %d", page, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(resp.Body)))
	if err != nil {
		return nil, fmt.Errorf("parse listing page %d: %w", page, err)
	}

	var links []string
	seen := make(map[string]struct{})
	doc.Find(`a[href*="/torrent/"]`).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		abs := absoluteURL(e.cfg.Site.BaseURL, href)
		// Listings link each item twice (title and thumbnail); keep the
		// first occurrence to preserve document order.
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})

	e.log.Debug("enumerated listing page",
		zap.Int("page", page),
		zap.Int("links", len(links)))
	return links, nil
}
