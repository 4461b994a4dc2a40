package scraper

import (
	"context"
	"log/slog"
)

// CrawlThread walks a thread from its first page, accumulating every post
// keyed by post number. Later pages overwrite earlier ones on a duplicate
// number. The loop stops on an empty or already-visited next URL or once
// maxPages pages have been fetched, so cyclic pagination cannot loop forever.
// A fetch failure aborts the whole crawl.
func CrawlThread(ctx context.Context, client *Client, threadURL string, maxPages int) (map[int]Post, error) {
	posts := make(map[int]Post)
	visited := make(map[string]bool)

	url := threadURL
	pages := 0
	for url != "" && !visited[url] && pages < maxPages {
		visited[url] = true
		pages++
		slog.Debug("fetching page", "n", pages, "url", url)

		doc, err := client.Get(ctx, url)
		if err != nil {
			return nil, err
		}

		pagePosts := ExtractPosts(doc)
		slog.Debug("extracted posts on page", "count", len(pagePosts))
		for num, post := range pagePosts {
			posts[num] = post
		}

		next, ok := NextPageURL(url, doc)
		if !ok {
			slog.Debug("no next page link found")
			break
		}
		slog.Debug("next page", "url", next)
		url = next
	}

	slog.Debug("crawl finished", "pages", pages, "posts_collected", len(posts))
	return posts, nil
}
