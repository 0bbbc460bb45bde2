// Package mirror copies upstream assets into durable object storage,
// deduplicated through deterministic, content-addressed keys.
package mirror

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// ThumbSize selects the thumbnail key family.
type ThumbSize string

// Thumbnail sizes.
const (
	ThumbSmall ThumbSize = "small"
	ThumbLarge ThumbSize = "large"
)

// datePartRe captures the year/month partition and filename the image
// host embeds in its URL paths, e.g. /imghost/covers/2019/06/title.jpg.
var datePartRe = regexp.MustCompile(`/(\d{4})/(\d{2})/([^/]+)$`)

// CoverKey derives the storage key for a cover image. Year, month and
// filename come from the source URL path, so identical source content
// always maps to the identical key.
func CoverKey(sourceURL string) (string, error) {
	year, month, file, err := datedParts(sourceURL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("covers/%s/%s/%s", year, month, file), nil
}

// ThumbKey derives the storage key for a thumbnail image.
func ThumbKey(size ThumbSize, sourceURL string) (string, error) {
	year, month, file, err := datedParts(sourceURL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("screenthumbs/%s/%s/%s/%s", size, year, month, file), nil
}

// DownloadKey derives the storage key for a torrent payload. The date
// partition comes from the item's extracted publish date, since the
// download endpoint exposes no dated path of its own.
func DownloadKey(publishedAt time.Time, title, id string) string {
	return fmt.Sprintf("torrents/%s/%s/%s_%s.torrent",
		publishedAt.Format("2006"),
		publishedAt.Format("01"),
		Slugify(title),
		id)
}

func datedParts(sourceURL string) (year, month, file string, err error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", "", "", fmt.Errorf("parse asset url: %w", err)
	}
	m := datePartRe.FindStringSubmatch(u.Path)
	if m == nil {
		return "", "", "", fmt.Errorf("asset url %s carries no year/month partition", sourceURL)
	}
	return m[1], m[2], m[3], nil
}

var (
	nonSlugChars    = regexp.MustCompile(`[^a-z0-9]+`)
	repeatedHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify lowercases a title and reduces it to hyphen-separated
// alphanumerics, safe for object keys.
func Slugify(s string) string {
	slug := strings.ToLower(s)
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = repeatedHyphens.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "untitled"
	}
	return slug
}
