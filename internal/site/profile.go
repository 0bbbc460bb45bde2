package site

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/vadviktor/animefeed/internal/config"
)

// publishDateLayout matches the upstream detail-page date rendering,
// e.g. "07 Jun, 2019 [10:32 PM]".
const publishDateLayout = "02 Jan, 2006 [03:04 PM]"

// downloadLinkMarker identifies the torrent payload link on a detail page.
const downloadLinkMarker = "download.php?torid="

// Extractor turns one item detail page plus its two auxiliary AJAX
// fragments into a Record.
type Extractor struct {
	session *Session
	cfg     *config.Config
	log     *zap.Logger
}

// NewExtractor builds an Extractor on an authenticated session.
func NewExtractor(session *Session, cfg *config.Config, log *zap.Logger) *Extractor {
	return &Extractor{session: session, cfg: cfg, log: log}
}

// Extract fetches and parses one item. Removed items and excluded
// categories are soft skips; a missing download link or a denial marker
// is a hard failure that aborts the run.
func (x *Extractor) Extract(ctx context.Context, detailURL string) (Result, error) {
	resp, err := x.session.Client().Get(ctx, detailURL)
	if err != nil {
		return Result{}, fmt.Errorf("fetch detail page: %w", err)
	}
	if IsTorrentNotFound(resp.Body) {
		x.log.Info("torrent removed upstream, skipping", zap.String("url", detailURL))
		return skip("torrent not found"), nil
	}
	if IsAccessDenied(resp.Body) {
		return Result{}, fmt.Errorf("detail page %s: %w", detailURL, ErrAccessDenied)
	}
	if resp.StatusCode != 200 {
		return Result{}, fmt.Errorf("detail page %s: unexpected status %d", detailURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(resp.Body)))
	if err != nil {
		return Result{}, fmt.Errorf("parse detail page %s: %w", detailURL, err)
	}

	category := parseCategory(doc)
	if excluded := x.excludedCategory(category); excluded != "" {
		x.log.Info("excluded category, skipping",
			zap.String("url", detailURL),
			zap.String("category", category))
		return skip(fmt.Sprintf("excluded category %q", category)), nil
	}

	rec, err := parseProfile(doc, detailURL)
	if err != nil {
		return Result{}, err
	}
	rec.Category = category

	mediaInfo, err := x.fetchMediaInfo(ctx, rec.ID)
	if err != nil {
		return Result{}, err
	}
	rec.MediaInfoHTML = mediaInfo

	fileList, err := x.fetchFileList(ctx, rec.ContentHash)
	if err != nil {
		return Result{}, err
	}
	rec.FileListHTML = fileList

	return Result{Record: rec}, nil
}

// excludedCategory returns the matching configured exclusion, or "".
// Matching is a case-sensitive substring check.
func (x *Extractor) excludedCategory(category string) string {
	for _, excluded := range x.cfg.Crawl.ExcludedCategories {
		if strings.Contains(category, excluded) {
			return excluded
		}
	}
	return ""
}

// fetchMediaInfo retrieves the technical-info fragment. An empty body
// means the upstream has none for this item; that is not an error.
func (x *Extractor) fetchMediaInfo(ctx context.Context, id string) (string, error) {
	u := fmt.Sprintf(x.cfg.Site.TechnicalURLTemplate, id)
	resp, err := x.session.Client().GetAJAX(ctx, u)
	if err != nil {
		return "", fmt.Errorf("fetch media info for %s: %w", id, err)
	}
	if IsAccessDenied(resp.Body) {
		return "", fmt.Errorf("media info for %s: %w", id, ErrAccessDenied)
	}
	return strings.TrimSpace(string(resp.Body)), nil
}

// fetchFileList retrieves the file-list fragment keyed by content hash.
func (x *Extractor) fetchFileList(ctx context.Context, hash string) (string, error) {
	u := fmt.Sprintf(x.cfg.Site.FileListURLTemplate, hash)
	resp, err := x.session.Client().GetAJAX(ctx, u)
	if err != nil {
		return "", fmt.Errorf("fetch file list for %s: %w", hash, err)
	}
	if IsAccessDenied(resp.Body) {
		return "", fmt.Errorf("file list for %s: %w", hash, ErrAccessDenied)
	}
	return strings.TrimSpace(string(resp.Body)), nil
}

// parseCategory reads the category from the header image alt text.
func parseCategory(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("h2 img").First().AttrOr("alt", ""))
}

// parseProfile extracts all network-independent record fields from a
// parsed detail page. It is pure over the document so it can be tested
// against saved fixture pages.
func parseProfile(doc *goquery.Document, pageURL string) (*Record, error) {
	id, err := trailingID(pageURL)
	if err != nil {
		return nil, err
	}

	downloadHref, ok := doc.Find(`a[href*="` + downloadLinkMarker + `"]`).First().Attr("href")
	if !ok {
		return nil, fmt.Errorf("detail page %s: %w", pageURL, ErrMissingDownloadLink)
	}
	downloadURL := absoluteURL(pageURL, downloadHref)

	hash, err := contentHash(downloadURL)
	if err != nil {
		return nil, fmt.Errorf("detail page %s: %w", pageURL, err)
	}

	title := strings.TrimSpace(doc.Find("h2").First().Text())

	dateText := strings.TrimSpace(doc.Find("#torDate").First().Text())
	publishedAt, err := time.Parse(publishDateLayout, dateText)
	if err != nil {
		return nil, fmt.Errorf("detail page %s: parse publish date %q: %w", pageURL, dateText, err)
	}

	description, err := doc.Find("#torDescription").First().Html()
	if err != nil {
		return nil, fmt.Errorf("detail page %s: read description: %w", pageURL, err)
	}

	rec := &Record{
		ID:          id,
		SourceURL:   pageURL,
		Title:       title,
		Tags:        strings.TrimSpace(doc.Find("#torTags").First().Text()),
		Description: strings.TrimSpace(description),
		PublishedAt: publishedAt,
		DownloadURL: downloadURL,
		ContentHash: hash,
	}

	if cover, found := doc.Find(`img[src*="/covers/"]`).First().Attr("src"); found {
		rec.CoverURL = absoluteURL(pageURL, cover)
	}

	rec.Thumbnails = parseThumbnails(doc, pageURL)
	return rec, nil
}

// parseThumbnails pairs the small preview images with the full-size
// screenshot links by position.
func parseThumbnails(doc *goquery.Document, pageURL string) []Thumbnail {
	var smalls, larges []string
	doc.Find(`img[src*="/screenthumb/"]`).Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok {
			smalls = append(smalls, absoluteURL(pageURL, src))
		}
	})
	doc.Find(`a[href*="/screenshot/"]`).Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			larges = append(larges, absoluteURL(pageURL, href))
		}
	})

	n := len(smalls)
	if len(larges) < n {
		n = len(larges)
	}
	thumbs := make([]Thumbnail, 0, n)
	for i := 0; i < n; i++ {
		thumbs = append(thumbs, Thumbnail{Small: smalls[i], Large: larges[i]})
	}
	return thumbs
}

// trailingID extracts the trailing numeric id from a detail URL path,
// e.g. /torrent/12345/some-title → 12345.
func trailingID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse detail url: %w", err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" && isDigits(segments[i]) {
			return segments[i], nil
		}
	}
	return "", fmt.Errorf("no numeric id in detail url %s", rawURL)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// contentHash pulls the torid token out of the download link.
func contentHash(downloadURL string) (string, error) {
	u, err := url.Parse(downloadURL)
	if err != nil {
		return "", fmt.Errorf("parse download url: %w", err)
	}
	hash := u.Query().Get("torid")
	if hash == "" {
		return "", fmt.Errorf("download url %s carries no torid", downloadURL)
	}
	return hash, nil
}

// absoluteURL resolves ref against base, returning ref unchanged when it
// cannot be resolved.
func absoluteURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
