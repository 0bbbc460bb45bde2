// Package site implements the authenticated session, listing enumeration
// and per-item extraction against the upstream torrent site.
package site

import "bytes"

// The upstream signals application-level conditions inside 200 bodies.
// The brittle string contracts live here and nowhere else.
const (
	accessDeniedMarker = "Access Denied!"
	invalidLoginMarker = "Invalid username or password"
)

// Removed items surface with one of two known phrasings depending on
// which template the upstream renders.
var notFoundMarkers = [][]byte{
	[]byte("Torrent not found"),
	[]byte("The torrent you are looking for does not exist"),
}

// IsAccessDenied reports the upstream denial marker. A denial means the
// crawler's traffic pattern has been flagged; it is never retried.
func IsAccessDenied(body []byte) bool {
	return bytes.Contains(body, []byte(accessDeniedMarker))
}

// IsTorrentNotFound reports the removed-item markers.
func IsTorrentNotFound(body []byte) bool {
	for _, marker := range notFoundMarkers {
		if bytes.Contains(body, marker) {
			return true
		}
	}
	return false
}

// IsInvalidLogin reports the rejected-credentials marker.
func IsInvalidLogin(body []byte) bool {
	return bytes.Contains(body, []byte(invalidLoginMarker))
}
