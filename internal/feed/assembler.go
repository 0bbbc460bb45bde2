package feed

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/vadviktor/animefeed/internal/config"
	"github.com/vadviktor/animefeed/internal/site"
)

// Assembler accumulates feed entries in crawl order and serializes the
// final document. The document is regenerated from scratch every run.
type Assembler struct {
	cfg     config.FeedConfig
	selfURL string
	now     func() time.Time
	entries []AtomEntry
}

// NewAssembler builds an Assembler. selfURL is the public URL the
// published feed object will live at.
func NewAssembler(cfg config.FeedConfig, selfURL string) *Assembler {
	return &Assembler{cfg: cfg, selfURL: selfURL, now: time.Now}
}

// Add appends one entry built from a record and its mirrored asset URLs.
// The entry body is repaired before embedding.
func (a *Assembler) Add(rec *site.Record, assets Assets) error {
	body, err := RepairFragment(buildFragment(rec, assets))
	if err != nil {
		return fmt.Errorf("assemble entry for %s: %w", rec.ID, err)
	}

	published := rec.PublishedAt.Format(time.RFC3339)
	a.entries = append(a.entries, AtomEntry{
		ID:        rec.SourceURL,
		Title:     rec.Title,
		Updated:   published,
		Published: published,
		Link:      AtomLink{Href: rec.SourceURL, Rel: "alternate", Type: "text/html"},
		Content:   AtomContent{Type: "html", Body: body},
	})
	return nil
}

// Len returns the number of accumulated entries.
func (a *Assembler) Len() int { return len(a.entries) }

// Document serializes the complete Atom document.
func (a *Assembler) Document() ([]byte, error) {
	id := a.cfg.ID
	if id == "" {
		id = a.selfURL
	}

	doc := AtomFeed{
		Xmlns:   "http://www.w3.org/2005/Atom",
		ID:      id,
		Title:   a.cfg.Title,
		Updated: a.now().UTC().Format(time.RFC3339),
		Author: AtomAuthor{
			Name:  a.cfg.AuthorName,
			Email: a.cfg.AuthorEmail,
		},
		Links: []AtomLink{
			{Href: a.selfURL, Rel: "self", Type: "application/atom+xml"},
		},
		Entries: a.entries,
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize feed: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
