package scraper

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var trailingPageRe = regexp.MustCompile(`/(\d+)$`)

// NextPageURL resolves the following page of a paginated thread, trying in
// order:
//
//  1. an anchor carrying rel="next"
//  2. an anchor whose visible text is "siguiente"
//  3. among anchors whose path ends in a page number, the smallest number
//     strictly greater than the current page (1 when the current path has no
//     trailing number)
//
// The second return is false when no next page could be determined. All hrefs
// resolve relative to currentURL.
func NextPageURL(currentURL string, doc *goquery.Document) (string, bool) {
	if next, ok := relNext(currentURL, doc); ok {
		return next, true
	}
	if next, ok := siguienteLink(currentURL, doc); ok {
		return next, true
	}
	return numberedFallback(currentURL, doc)
}

func relNext(currentURL string, doc *goquery.Document) (string, bool) {
	a := doc.Find(`a[rel=next]`).First()
	if a.Length() == 0 {
		return "", false
	}
	href, ok := a.Attr("href")
	if !ok {
		return "", false
	}
	return resolveHref(currentURL, href)
}

func siguienteLink(currentURL string, doc *goquery.Document) (next string, ok bool) {
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.ToLower(collapsedText(a)) != "siguiente" {
			return true
		}
		href, has := a.Attr("href")
		if !has {
			return true
		}
		next, ok = resolveHref(currentURL, href)
		return !ok
	})
	return next, ok
}

// numberedFallback is a heuristic for pages without an explicit next link: it
// assumes page numbers appear as the final path segment, which holds for the
// thread URL shapes observed on the site but is not otherwise validated.
func numberedFallback(currentURL string, doc *goquery.Document) (string, bool) {
	current := 1
	if u, err := url.Parse(currentURL); err == nil {
		if m := trailingPageRe.FindStringSubmatch(strings.TrimRight(u.Path, "/")); m != nil {
			current, _ = strconv.Atoi(m[1])
		}
	}

	candidates := make(map[int]string)
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		abs, ok := resolveHref(currentURL, href)
		if !ok {
			return
		}
		u, err := url.Parse(abs)
		if err != nil {
			return
		}
		m := trailingPageRe.FindStringSubmatch(strings.TrimRight(u.Path, "/"))
		if m == nil {
			return
		}
		page, err := strconv.Atoi(m[1])
		if err != nil {
			return
		}
		candidates[page] = abs
	})

	var higher []int
	for page := range candidates {
		if page > current {
			higher = append(higher, page)
		}
	}
	if len(higher) == 0 {
		return "", false
	}
	sort.Ints(higher)
	return candidates[higher[0]], true
}

// resolveHref makes href absolute against base, rejecting blank or unparsable
// values.
func resolveHref(base, href string) (string, bool) {
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
