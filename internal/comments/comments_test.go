package comments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conversa-ai/mvarchive/internal/catalog"
	"github.com/conversa-ai/mvarchive/internal/scraper"
)

func writeCatalog(t *testing.T, dir string, articles []catalog.Article) {
	t.Helper()
	require.NoError(t, catalog.WriteCSV(filepath.Join(dir, catalog.CSVFileName), articles))
}

func testClient() *scraper.Client {
	return scraper.NewClient(scraper.Config{UserAgent: "test-agent", TimeoutSeconds: 5})
}

func TestDownloadAllPaginatesAndWrites(t *testing.T) {
	var requests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/art/1", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `<body>
			<div id="post-1">
				<a class="autor user-card" href="/id/ana">ana</a>
				<div class="post-contents">primer comentario</div>
			</div>
			<div id="post-2">
				<div class="post-contents">cuenta borrada</div>
			</div>
			<a class="btn btn-primary" href="/art/1/2">Siguiente</a>
		</body>`)
	})
	mux.HandleFunc("/art/1/2", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `<body>
			<div id="post-3">
				<a class="autor user-card" href="/id/ana">ana</a>
				<div class="post-contents">última página</div>
			</div>
		</body>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	metaDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "comments")
	writeCatalog(t, metaDir, []catalog.Article{{ID: "mv1", Link: srv.URL + "/art/1"}})

	require.NoError(t, DownloadAll(context.Background(), testClient(), metaDir, outDir, 2000))
	require.Equal(t, int32(2), requests.Load())

	data, err := os.ReadFile(filepath.Join(outDir, "mv1.json"))
	require.NoError(t, err)

	var thread ArticleThread
	require.NoError(t, json.Unmarshal(data, &thread))
	require.Equal(t, srv.URL+"/art/1", thread.URL)
	require.Equal(t, []Comment{
		{Order: "1", User: "ana", Content: "primer comentario"},
		{Order: "2", User: "[deleted]", Content: "cuenta borrada"},
		{Order: "3", User: "ana", Content: "última página"},
	}, thread.Objects)
}

func TestDownloadAllSkipsExistingAndGeneralThreads(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `<body><div id="post-1"><div class="post-contents">x</div></div></body>`)
	}))
	defer srv.Close()

	metaDir := t.TempDir()
	outDir := t.TempDir()
	writeCatalog(t, metaDir, []catalog.Article{
		{ID: "mv1", Link: srv.URL + "/art/1"},
		{ID: "mv2", Link: srv.URL + "/hilo-general"},
		{ID: "mv3", Link: srv.URL + "/cita-tinder"},
	})

	// mv1 is already on disk.
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "mv1.json"), []byte("{}"), 0644))

	require.NoError(t, DownloadAll(context.Background(), testClient(), metaDir, outDir, 2000))
	require.Equal(t, int32(0), requests.Load(), "every article was skipped before fetching")

	data, err := os.ReadFile(filepath.Join(outDir, "mv1.json"))
	require.NoError(t, err)
	require.Equal(t, "{}", string(data), "existing file untouched")
}

func TestDownloadAllAbsorbsPerArticleFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/art/bad", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/art/good", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<body><div id="post-1"><div class="post-contents">bien</div></div></body>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	metaDir := t.TempDir()
	outDir := t.TempDir()
	writeCatalog(t, metaDir, []catalog.Article{
		{ID: "bad", Link: srv.URL + "/art/bad"},
		{ID: "good", Link: srv.URL + "/art/good"},
	})

	require.NoError(t, DownloadAll(context.Background(), testClient(), metaDir, outDir, 2000))

	_, err := os.Stat(filepath.Join(outDir, "bad.json"))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(outDir, "good.json"))
	require.NoError(t, err)
}

func TestDownloadArticleTerminatesOnCyclicNextLinks(t *testing.T) {
	var requests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/art/1", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `<body>
			<div id="post-1"><div class="post-contents">uno</div></div>
			<a class="btn btn-primary" href="/art/2">Siguiente</a>
		</body>`)
	})
	mux.HandleFunc("/art/2", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `<body>
			<div id="post-2"><div class="post-contents">dos</div></div>
			<a class="btn btn-primary" href="/art/1">Siguiente</a>
		</body>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	thread, err := downloadArticle(context.Background(), testClient(), srv.URL+"/art/1", 100)
	require.NoError(t, err)
	require.Len(t, thread.Objects, 2)
	require.Equal(t, int32(2), requests.Load())
}
