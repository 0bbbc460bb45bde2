package feed

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vadviktor/animefeed/internal/site"
)

// ThumbLink pairs the public URLs of a mirrored thumbnail.
type ThumbLink struct {
	SmallURL string
	LargeURL string
}

// Assets holds the resolved public URLs of a record's mirrored assets.
type Assets struct {
	CoverURL    string
	Thumbnails  []ThumbLink
	DownloadURL string
}

// buildFragment renders the entry body for one record. The result may be
// malformed if upstream description/file-list markup is; RepairFragment
// is the correctness boundary that fixes it before embedding.
func buildFragment(rec *site.Record, assets Assets) string {
	var b strings.Builder

	if assets.CoverURL != "" {
		fmt.Fprintf(&b, `<p><img src=%q alt="cover"/></p>`, assets.CoverURL)
	}
	fmt.Fprintf(&b, `<p>Category: %s</p>`, html.EscapeString(rec.Category))
	if rec.Tags != "" {
		fmt.Fprintf(&b, `<p>Tags: %s</p>`, html.EscapeString(rec.Tags))
	}
	fmt.Fprintf(&b, `<p>Published: %s</p>`, rec.PublishedAt.Format("02 Jan, 2006 03:04 PM"))
	fmt.Fprintf(&b, `<p><a href=%q>Profile page</a></p>`, rec.SourceURL)
	fmt.Fprintf(&b, `<div>%s</div>`, rec.Description)

	if len(assets.Thumbnails) > 0 {
		b.WriteString("<p>")
		for _, thumb := range assets.Thumbnails {
			fmt.Fprintf(&b, `<a href=%q><img src=%q alt="screenshot"/></a> `, thumb.LargeURL, thumb.SmallURL)
		}
		b.WriteString("</p>")
	}

	fmt.Fprintf(&b, `<p><a href=%q>Download torrent</a></p>`, assets.DownloadURL)
	fmt.Fprintf(&b, `<div>%s</div>`, rec.FileListHTML)
	if rec.MediaInfoHTML != "" {
		fmt.Fprintf(&b, `<div>%s</div>`, rec.MediaInfoHTML)
	}

	return b.String()
}

// RepairFragment parses and re-serializes an HTML fragment so that a
// malformed input (unbalanced tags, stray markup from upstream) cannot
// corrupt the document it is embedded into.
func RepairFragment(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse fragment: %w", err)
	}
	repaired, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("serialize fragment: %w", err)
	}
	return strings.TrimSpace(repaired), nil
}
