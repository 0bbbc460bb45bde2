package site

import "errors"

// Fatal upstream conditions. All of these abort the run: they indicate
// the crawling contract with the upstream no longer holds, not a
// one-off item problem.
var (
	// ErrAccessDenied is raised when any response carries the denial
	// marker. Retrying would dig the hole deeper.
	ErrAccessDenied = errors.New("upstream denied access")

	// ErrAuthentication is raised when the login POST is rejected.
	// Retrying with the same bad credentials cannot succeed.
	ErrAuthentication = errors.New("authentication rejected")

	// ErrPaginationDiscovery is raised when the bootstrap listing page
	// lacks the pagination marker; the crawl cannot bound itself.
	ErrPaginationDiscovery = errors.New("pagination marker not found")

	// ErrMissingDownloadLink is raised when a detail page has no
	// download link, which indicates a structural change upstream.
	ErrMissingDownloadLink = errors.New("download link missing from detail page")
)
