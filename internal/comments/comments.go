// Package comments bulk-downloads full comment threads for every article in a
// catalog, one JSON file per article. Unlike the rehydration core, failures
// here are absorbed per article so a long run survives individual bad threads.
package comments

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/conversa-ai/mvarchive/internal/catalog"
	"github.com/conversa-ai/mvarchive/internal/scraper"
)

// Comment is one post as stored in an article's JSON file. Order is the
// post's visible number, kept as a string.
type Comment struct {
	Order   string `json:"order"`
	User    string `json:"user"`
	Content string `json:"content"`
}

// ArticleThread is the per-article artifact.
type ArticleThread struct {
	URL     string    `json:"url"`
	Objects []Comment `json:"objects"`
}

// deletedUser replaces authors whose account no longer resolves on the page.
const deletedUser = "[deleted]"

// generalThreadWords flag recurring community threads that are not articles.
var generalThreadWords = []string{"hilo", "referendum", "manana", "coronachat", "tinder", "sorteamos"}

var commentIDRe = regexp.MustCompile(`^post-(\d+)`)

// DownloadAll reads the catalog under metadataDir and downloads each
// article's comments to outputDir/<id>.json. Articles already on disk or
// matching the general-thread skiplist are skipped, and a failed article is
// logged and skipped rather than aborting the run.
func DownloadAll(ctx context.Context, client *scraper.Client, metadataDir, outputDir string, maxPages int) error {
	articles, err := catalog.ReadCSV(filepath.Join(metadataDir, catalog.CSVFileName))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for _, art := range articles {
		outPath := filepath.Join(outputDir, art.ID+".json")
		if _, err := os.Stat(outPath); err == nil {
			slog.Info("article already exists, skipping", "id", art.ID)
			continue
		}
		if isGeneralThread(art.Link) {
			slog.Info("article is a general thread, skipping", "id", art.ID)
			continue
		}

		slog.Info("getting comments", "id", art.ID, "link", art.Link)
		thread, err := downloadArticle(ctx, client, art.Link, maxPages)
		if err != nil {
			slog.Warn("request failed, skipping article", "id", art.ID, "error", err)
			continue
		}

		data, err := json.MarshalIndent(thread, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return err
		}
	}

	return nil
}

func isGeneralThread(link string) bool {
	for _, word := range generalThreadWords {
		if strings.Contains(link, word) {
			return true
		}
	}
	return false
}

// downloadArticle collects comments across an article's pages. The next link
// is the primary-button anchor; the loop carries the same visited-set and
// page-cap guards as the thread crawler, so cyclic links cannot hang it.
func downloadArticle(ctx context.Context, client *scraper.Client, link string, maxPages int) (*ArticleThread, error) {
	thread := &ArticleThread{URL: link, Objects: []Comment{}}
	visited := make(map[string]bool)

	pageURL := link
	pages := 0
	for pageURL != "" && !visited[pageURL] && pages < maxPages {
		visited[pageURL] = true
		pages++

		doc, err := client.Get(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		thread.Objects = append(thread.Objects, extractComments(doc)...)

		href, ok := doc.Find("a.btn.btn-primary").First().Attr("href")
		if !ok {
			break
		}
		next, ok := resolveNext(pageURL, href)
		if !ok {
			break
		}
		pageURL = next
	}

	return thread, nil
}

func resolveNext(base, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return baseURL.ResolveReference(ref).String(), true
}

func extractComments(doc *goquery.Document) []Comment {
	var comments []Comment
	doc.Find("div[id^=post-]").Each(func(_ int, d *goquery.Selection) {
		id, _ := d.Attr("id")
		m := commentIDRe.FindStringSubmatch(id)
		if m == nil {
			return
		}
		contents := d.Find("div.post-contents").First()
		if contents.Length() == 0 {
			return
		}

		user := deletedUser
		if a := d.Find("a.autor.user-card").First(); a.Length() > 0 {
			user = strings.TrimSpace(a.Text())
		}

		comments = append(comments, Comment{
			Order:   m[1],
			User:    user,
			Content: strings.TrimSpace(contents.Text()),
		})
	})
	return comments
}
