// Package catalog scrapes the forum's thread listing into a flat CSV of
// article IDs and links, the bulk comment downloader's work list.
package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"github.com/PuerkitoBio/goquery"

	"github.com/conversa-ai/mvarchive/internal/scraper"
)

// SiteBase prefixes the relative hrefs the listing markup carries.
const SiteBase = "https://www.mediavida.com"

// CSVFileName is the catalog artifact inside an output folder.
const CSVFileName = "articles.csv"

// Article is one thread listing entry.
type Article struct {
	ID   string
	Link string
}

// ScrapeListing walks listing pages base_url/p1..pN and collects every
// thread's ID and absolute link. A fetch failure aborts the whole listing.
func ScrapeListing(ctx context.Context, client *scraper.Client, baseURL string, pages int) ([]Article, error) {
	var articles []Article

	for page := 1; page <= pages; page++ {
		url := fmt.Sprintf("%s/p%d", baseURL, page)
		doc, err := client.Get(ctx, url)
		if err != nil {
			return nil, err
		}

		doc.Find("div.thread").Each(func(_ int, t *goquery.Selection) {
			a := t.Find("a").First()
			id, _ := a.Attr("id")
			href, ok := a.Attr("href")
			if id == "" || !ok {
				return
			}
			slog.Debug("listed article", "id", id)
			articles = append(articles, Article{ID: id, Link: SiteBase + href})
		})
	}

	return articles, nil
}

// WriteCSV writes the catalog with an article_id,article_link header.
func WriteCSV(path string, articles []Article) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"article_id", "article_link"}); err != nil {
		return err
	}
	for _, a := range articles {
		if err := w.Write([]string{a.ID, a.Link}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV loads a previously written catalog.
func ReadCSV(path string) ([]Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var articles []Article
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue // header
		}
		articles = append(articles, Article{ID: row[0], Link: row[1]})
	}
	return articles, nil
}
