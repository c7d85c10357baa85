package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nika-tui/nika/pkg/data"
	"github.com/nika-tui/nika/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPage = `<html><body>
<div class="my-3 grid justify-end gap-3 grid-cols-2 md:grid-cols-4 lg:grid-cols-5">
  <div>
    <a href="/manga/2/one-piece"><img src="cover.jpg"></a>
    <div class="mt-3"><a href="/manga/2/one-piece"><div class="mt-1 font-bold leading-tight">One Piece</div></a></div>
  </div>
  <div>
    <a href="/manga/3/one-punch-man"><img src="cover.jpg"></a>
    <div class="mt-3"><a href="/manga/3/one-punch-man"><div class="mt-1 font-bold leading-tight">One-Punch Man</div></a></div>
  </div>
  <div>
    <a href="/manga/9/one-piece-party"><img src="cover.jpg"></a>
    <div class="mt-3"><a href="/manga/9/one-piece-party"><div class="mt-1 font-bold leading-tight">One Piece Party</div></a></div>
  </div>
</div>
</body></html>`

const comicPage = `<html><body>
<div class="grid grid-cols-1 md:grid-cols-3 gap-3 mb-3">
  <div><label class="text-secondary">Type</label><div>manga</div></div>
  <div><label class="text-secondary">Status</label><div>publishing</div></div>
  <div><label class="text-secondary">Year</label><div>1997</div></div>
</div>
<div>
  <a href="/search?genre=Action">Action</a>
  <a href="/search?genre=Adventure">Adventure</a>
</div>
<div id="chapters">
  <a class="border border-border p-1" href="/chapters/2-11000000/one-piece-chapter-1000">Chapter 1000</a>
  <a class="border border-border p-1" href="/chapters/2-10999000/one-piece-chapter-999">Chapter 999</a>
</div>
</body></html>`

const chapterPage = `<html><body>
<chapter-page><img class="js-page" data-src="https://cdn.example.com/2/1000/1.jpeg"></chapter-page>
<chapter-page><img class="js-page" data-src="https://cdn.example.com/2/1000/2.jpeg"></chapter-page>
<chapter-page><img class="js-page" src="/local/3.png"></chapter-page>
</body></html>`

func newMangapillServer(t *testing.T) (*Mangapill, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "nothing" {
			w.Write([]byte(`<html><body><p>No results</p></body></html>`))
			return
		}
		w.Write([]byte(searchPage))
	})
	mux.HandleFunc("/manga/2/one-piece", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(comicPage))
	})
	mux.HandleFunc("/manga/4/bare", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body></body></html>`))
	})
	mux.HandleFunc("/chapters/2-11000000/one-piece-chapter-1000", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chapterPage))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	source := NewMangapill(utils.NewTestClient(server.Client()))
	source.baseURL = server.URL
	return source, server
}

func TestMangapill_Search(t *testing.T) {
	source, server := newMangapillServer(t)

	comics, err := source.Search(context.Background(), "one piece")
	require.NoError(t, err)
	require.Len(t, comics, 2)

	assert.Equal(t, "One Piece", comics[0].Name)
	assert.Equal(t, server.URL+"/manga/2/one-piece", comics[0].Source)
	assert.Equal(t, "mangapill", comics[0].SourceName)
	assert.Equal(t, "One Piece Party", comics[1].Name)
}

func TestMangapill_SearchNoResults(t *testing.T) {
	source, _ := newMangapillServer(t)

	comics, err := source.Search(context.Background(), "nothing")
	assert.NoError(t, err)
	assert.Empty(t, comics)
}

func TestMangapill_GetChapters(t *testing.T) {
	source, server := newMangapillServer(t)

	chapters, err := source.GetChapters(context.Background(), data.Comic{Source: server.URL + "/manga/2/one-piece"})
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.Equal(t, "Chapter 1000", chapters[0].Name)
	assert.Equal(t, server.URL+"/chapters/2-11000000/one-piece-chapter-1000", chapters[0].Source)
}

func TestMangapill_GetInfo(t *testing.T) {
	source, server := newMangapillServer(t)

	info, err := source.GetInfo(context.Background(), data.Comic{Source: server.URL + "/manga/2/one-piece"})
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "publishing", info.Status)
	assert.Equal(t, "1997", info.Date)
	assert.Equal(t, []string{"Action", "Adventure"}, info.Genres)
}

func TestMangapill_GetInfoMissingGrid(t *testing.T) {
	source, server := newMangapillServer(t)

	info, err := source.GetInfo(context.Background(), data.Comic{Source: server.URL + "/manga/4/bare"})
	assert.NoError(t, err)
	assert.Nil(t, info)
}

func TestMangapill_DownloadAssetURLs(t *testing.T) {
	source, server := newMangapillServer(t)

	urls, err := source.DownloadAssetURLs(context.Background(),
		data.NewChapter("Chapter 1000", server.URL+"/chapters/2-11000000/one-piece-chapter-1000"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://cdn.example.com/2/1000/1.jpeg",
		"https://cdn.example.com/2/1000/2.jpeg",
		server.URL + "/local/3.png",
	}, urls)
}

func TestMangapill_NetworkError(t *testing.T) {
	source, server := newMangapillServer(t)
	server.Close()

	_, err := source.Search(context.Background(), "one piece")
	assert.Error(t, err)
}
