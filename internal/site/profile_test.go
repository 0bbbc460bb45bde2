package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const detailPage = `<html><body>
<h2><img src="/images/cat/anime-movie.png" alt="Anime Movie"/> Cowboy Galaxy: The Movie</h2>
<span id="torDate">07 Jun, 2019 [10:32 PM]</span>
<div id="torTags">space, western, movie</div>
<div id="content">
  <img src="/imghost/covers/2019/06/cowboy-galaxy.jpg"/>
  <div id="torDescription"><p>A classic, remastered.</p></div>
  <div class="screenshots">
    <a href="/imghost/screenshot/2019/06/shot1.png"><img src="/imghost/screenthumb/2019/06/shot1t.png"/></a>
    <a href="/imghost/screenshot/2019/06/shot2.png"><img src="/imghost/screenthumb/2019/06/shot2t.png"/></a>
  </div>
  <a href="/download.php?torid=f00dcafe">Download</a>
</div>
</body></html>`

func detailServer(t *testing.T, detailBody, mediaInfo, fileList string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/torrent/"):
			_, _ = w.Write([]byte(detailBody))
		case strings.HasPrefix(r.URL.Path, "/ajax/torrent_technical"):
			_, _ = w.Write([]byte(mediaInfo))
		case strings.HasPrefix(r.URL.Path, "/ajax/torrent_filelist"):
			_, _ = w.Write([]byte(fileList))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestExtractFullRecord(t *testing.T) {
	t.Parallel()

	srv := detailServer(t, detailPage,
		`<table><tr><td>1080p</td></tr></table>`,
		`<ul><li>episode1.mkv</li></ul>`)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	x := NewExtractor(newTestSession(t, cfg), cfg, zap.NewNop())

	res, err := x.Extract(context.Background(), srv.URL+"/torrent/4211/cowboy-galaxy-the-movie")
	require.NoError(t, err)
	require.False(t, res.Skipped)
	rec := res.Record
	require.NotNil(t, rec)

	require.Equal(t, "4211", rec.ID)
	require.Equal(t, "Anime Movie", rec.Category)
	require.Equal(t, "Cowboy Galaxy: The Movie", rec.Title)
	require.Equal(t, "space, western, movie", rec.Tags)
	require.Equal(t, "<p>A classic, remastered.</p>", rec.Description)
	require.Equal(t, time.Date(2019, time.June, 7, 22, 32, 0, 0, time.UTC), rec.PublishedAt)
	require.Equal(t, srv.URL+"/download.php?torid=f00dcafe", rec.DownloadURL)
	require.Equal(t, "f00dcafe", rec.ContentHash)
	require.Equal(t, srv.URL+"/imghost/covers/2019/06/cowboy-galaxy.jpg", rec.CoverURL)
	require.Equal(t, []Thumbnail{
		{
			Small: srv.URL + "/imghost/screenthumb/2019/06/shot1t.png",
			Large: srv.URL + "/imghost/screenshot/2019/06/shot1.png",
		},
		{
			Small: srv.URL + "/imghost/screenthumb/2019/06/shot2t.png",
			Large: srv.URL + "/imghost/screenshot/2019/06/shot2.png",
		},
	}, rec.Thumbnails)
	require.Equal(t, "<table><tr><td>1080p</td></tr></table>", rec.MediaInfoHTML)
	require.Equal(t, "<ul><li>episode1.mkv</li></ul>", rec.FileListHTML)
}

func TestExtractEmptyMediaInfoIsAbsent(t *testing.T) {
	t.Parallel()

	srv := detailServer(t, detailPage, "", `<ul><li>a.mkv</li></ul>`)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	x := NewExtractor(newTestSession(t, cfg), cfg, zap.NewNop())

	res, err := x.Extract(context.Background(), srv.URL+"/torrent/4211/cowboy-galaxy-the-movie")
	require.NoError(t, err)
	require.Empty(t, res.Record.MediaInfoHTML)
}

func TestExtractTorrentNotFoundIsSkip(t *testing.T) {
	t.Parallel()

	srv := detailServer(t, `<html><body><p>Torrent not found</p></body></html>`, "", "")
	defer srv.Close()

	cfg := testConfig(srv.URL)
	x := NewExtractor(newTestSession(t, cfg), cfg, zap.NewNop())

	res, err := x.Extract(context.Background(), srv.URL+"/torrent/4211/gone")
	require.NoError(t, err)
	require.True(t, res.Skipped)
	require.Nil(t, res.Record)
}

func TestExtractExcludedCategoryIsSkip(t *testing.T) {
	t.Parallel()

	page := strings.Replace(detailPage, `alt="Anime Movie"`, `alt="Hentai"`, 1)
	srv := detailServer(t, page, "", "")
	defer srv.Close()

	cfg := testConfig(srv.URL)
	x := NewExtractor(newTestSession(t, cfg), cfg, zap.NewNop())

	res, err := x.Extract(context.Background(), srv.URL+"/torrent/4211/whatever")
	require.NoError(t, err)
	require.True(t, res.Skipped)
	require.Contains(t, res.Reason, "Hentai")
}

func TestExtractMissingDownloadLinkIsFatal(t *testing.T) {
	t.Parallel()

	page := strings.Replace(detailPage, `<a href="/download.php?torid=f00dcafe">Download</a>`, "", 1)
	srv := detailServer(t, page, "", "")
	defer srv.Close()

	cfg := testConfig(srv.URL)
	x := NewExtractor(newTestSession(t, cfg), cfg, zap.NewNop())

	_, err := x.Extract(context.Background(), srv.URL+"/torrent/4211/broken")
	require.ErrorIs(t, err, ErrMissingDownloadLink)
}

func TestExtractAccessDeniedOnFragmentIsFatal(t *testing.T) {
	t.Parallel()

	srv := detailServer(t, detailPage, "Access Denied!", "")
	defer srv.Close()

	cfg := testConfig(srv.URL)
	x := NewExtractor(newTestSession(t, cfg), cfg, zap.NewNop())

	_, err := x.Extract(context.Background(), srv.URL+"/torrent/4211/blocked")
	require.ErrorIs(t, err, ErrAccessDenied)
}

func TestParseProfileIsPure(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(detailPage))
	require.NoError(t, err)

	rec, err := parseProfile(doc, "https://animetorrents.example/torrent/4211/cowboy-galaxy-the-movie")
	require.NoError(t, err)
	require.Equal(t, "4211", rec.ID)
	require.Equal(t, "f00dcafe", rec.ContentHash)
	require.Len(t, rec.Thumbnails, 2)
}

func TestTrailingID(t *testing.T) {
	t.Parallel()

	id, err := trailingID("https://animetorrents.example/torrent/98765/some-title")
	require.NoError(t, err)
	require.Equal(t, "98765", id)

	_, err = trailingID("https://animetorrents.example/torrents.php")
	require.Error(t, err)
}
