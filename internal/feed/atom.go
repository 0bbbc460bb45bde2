// Package feed assembles extracted records into an Atom document and
// publishes it to object storage.
package feed

import "encoding/xml"

// Atom document model, serialized with encoding/xml.

// AtomFeed is the feed-global header plus its entries.
type AtomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Xmlns   string      `xml:"xmlns,attr"`
	ID      string      `xml:"id"`
	Title   string      `xml:"title"`
	Updated string      `xml:"updated"`
	Author  AtomAuthor  `xml:"author"`
	Links   []AtomLink  `xml:"link"`
	Entries []AtomEntry `xml:"entry"`
}

// AtomAuthor identifies the feed author.
type AtomAuthor struct {
	Name  string `xml:"name"`
	Email string `xml:"email,omitempty"`
}

// AtomLink is a feed or entry link.
type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
	Type string `xml:"type,attr,omitempty"`
}

// AtomEntry is one feed entry.
type AtomEntry struct {
	ID        string      `xml:"id"`
	Title     string      `xml:"title"`
	Updated   string      `xml:"updated"`
	Published string      `xml:"published"`
	Link      AtomLink    `xml:"link"`
	Content   AtomContent `xml:"content"`
}

// AtomContent carries the entry body. Type "html" with character data
// keeps the embedded fragment safely escaped.
type AtomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}
