package site

import "time"

// Thumbnail pairs a small preview image with its full-size counterpart.
type Thumbnail struct {
	Small string
	Large string
}

// Record is the canonical extracted unit for one item. It is either
// fully populated or not constructed at all; partial records never reach
// the feed. Immutable once built.
type Record struct {
	ID          string
	SourceURL   string
	Category    string
	Title       string
	Tags        string
	Description string
	PublishedAt time.Time
	// DownloadURL points at the torrent payload on the upstream.
	DownloadURL string
	// ContentHash is the torid token of the download link; it addresses
	// the payload content for deduplication.
	ContentHash string
	// CoverURL is empty when the item has no cover image.
	CoverURL   string
	Thumbnails []Thumbnail
	// MediaInfoHTML is empty when the upstream has no technical info.
	MediaInfoHTML string
	FileListHTML  string
}

// Result is the tagged outcome of an extraction: either a Record, or a
// soft skip with its reason. Hard failures travel on the error return so
// callers cannot mistake one for the other.
type Result struct {
	Record  *Record
	Skipped bool
	Reason  string
}

func skip(reason string) Result {
	return Result{Skipped: true, Reason: reason}
}
