package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Post is one forum message as found on a page. Author is the raw token used
// to derive an anonymous speaker label; it must never reach an output file.
type Post struct {
	Author string
	Text   string
}

var (
	postIDRe      = regexp.MustCompile(`^post-(\d+)$`)
	authorClassRe = regexp.MustCompile(`(?i)(nick|author|user)`)
	headerClassRe = regexp.MustCompile(`(?i)(post-header|post-info|post-meta)`)
)

// authorStrategy tries to pull a raw author token out of a post element,
// returning "" when it has nothing. Strategies run in order; the first
// non-empty result wins.
type authorStrategy func(post *goquery.Selection) string

var authorStrategies = []authorStrategy{
	authorFromClass,
	authorFromHeaderLink,
}

// authorFromClass picks the first descendant whose class attribute mentions
// nick/author/user, the common shapes of Mediavida's byline markup.
func authorFromClass(post *goquery.Selection) string {
	author := ""
	post.Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		class, ok := el.Attr("class")
		if !ok || !authorClassRe.MatchString(class) {
			return true
		}
		author = collapsedText(el)
		return false
	})
	return author
}

// authorFromHeaderLink falls back to the first non-empty link text inside a
// header/meta container.
func authorFromHeaderLink(post *goquery.Selection) string {
	author := ""
	post.Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		class, ok := el.Attr("class")
		if !ok || !headerClassRe.MatchString(class) {
			return true
		}
		el.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if txt := collapsedText(a); txt != "" {
				author = txt
				return false
			}
			return true
		})
		return false
	})
	return author
}

// ExtractPosts maps every post on a page to its raw author token and body
// text. Posts are divs with an id of the form "post-<n>"; one missing its
// content container is skipped outright.
func ExtractPosts(doc *goquery.Document) map[int]Post {
	out := make(map[int]Post)

	doc.Find("div[id^=post-]").Each(func(_ int, d *goquery.Selection) {
		id, _ := d.Attr("id")
		m := postIDRe.FindStringSubmatch(id)
		if m == nil {
			return
		}
		num, err := strconv.Atoi(m[1])
		if err != nil {
			return
		}

		contents := d.Find("div.post-contents").First()
		if contents.Length() == 0 {
			return
		}

		author := ""
		for _, strategy := range authorStrategies {
			if author = strategy(d); author != "" {
				break
			}
		}

		out[num] = Post{
			Author: author,
			Text:   strings.TrimSpace(blockText(contents)),
		}
	})

	return out
}

// blockText joins every text node under the selection with a newline, so
// block-level structure survives as single line breaks.
func blockText(sel *goquery.Selection) string {
	var parts []string
	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}
	return strings.Join(parts, "\n")
}

func collectText(node *html.Node, parts *[]string) {
	if node.Type == html.TextNode {
		*parts = append(*parts, node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, parts)
	}
}

// collapsedText is the selection's text with runs of whitespace squeezed to
// single spaces and the ends trimmed.
func collapsedText(sel *goquery.Selection) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(sel.Text(), " "))
}

var wsRe = regexp.MustCompile(`\s+`)
