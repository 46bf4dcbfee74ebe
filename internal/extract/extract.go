// Package extract pulls the main body text out of fetched HTML. A document
// is parsed and stripped of non-content elements once; a fixed cascade of
// strategies then runs against the prepared tree and the first candidate
// long enough to analyze wins.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrNoContent is returned when no strategy produced any text, including
// documents without a <body>.
var ErrNoContent = errors.New("extract: no content found")

// Strategy names, in cascade order, as reported in Result.Strategy.
const (
	StrategyArticle    = "article"
	StrategyMain       = "main"
	StrategyIndicator  = "indicator"
	StrategyParagraphs = "paragraphs"
	StrategyBodyText   = "body"
)

// contentIndicators are class/id substrings that commonly mark the main
// content container. Tried in order, class before id.
var contentIndicators = []string{
	"content", "article", "post", "entry", "text",
	"main", "body", "story", "page-content",
}

// strippedElements never contribute body text and are removed during
// preparation.
const strippedElements = "script, style, nav, header, footer, aside, iframe, noscript"

// Result is one extraction outcome.
type Result struct {
	Text     string
	Strategy string
}

// Document is a parsed page with non-content elements already removed.
// Strategies only read the tree, so one Document can serve several probes.
type Document struct {
	doc *goquery.Document
}

// Prepare parses raw HTML and strips non-content elements.
func Prepare(rawHTML []byte) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("extract: parse html: %w", err)
	}
	doc.Find(strippedElements).Remove()
	return &Document{doc: doc}, nil
}

// Title returns the trimmed <title> text, empty when absent.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// MainContent runs the cascade. minWords is the threshold a candidate must
// exceed for the cascade to stop; the final fallback returns whatever body
// text exists regardless of length.
func (d *Document) MainContent(minWords int) (Result, error) {
	if text, ok := accept(d.doc.Find("article").First(), minWords); ok {
		return Result{Text: text, Strategy: StrategyArticle}, nil
	}
	if text, ok := accept(d.doc.Find("main").First(), minWords); ok {
		return Result{Text: text, Strategy: StrategyMain}, nil
	}
	if text, ok := d.byIndicator(minWords); ok {
		return Result{Text: text, Strategy: StrategyIndicator}, nil
	}

	body := d.doc.Find("body").First()
	if body.Length() == 0 {
		return Result{}, ErrNoContent
	}
	if text, ok := accept(body.Find("p"), minWords); ok {
		return Result{Text: text, Strategy: StrategyParagraphs}, nil
	}
	if text := flattenText(body); text != "" {
		return Result{Text: text, Strategy: StrategyBodyText}, nil
	}
	return Result{}, ErrNoContent
}

// byIndicator probes each indicator substring against class attributes
// first, then ids, accepting the first element long enough.
func (d *Document) byIndicator(minWords int) (string, bool) {
	for _, indicator := range contentIndicators {
		if text, ok := firstMatch(d.doc.Find("[class]"), "class", indicator, minWords); ok {
			return text, true
		}
		if text, ok := firstMatch(d.doc.Find("[id]"), "id", indicator, minWords); ok {
			return text, true
		}
	}
	return "", false
}

func firstMatch(sel *goquery.Selection, attr, indicator string, minWords int) (string, bool) {
	found := ""
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		val, _ := s.Attr(attr)
		if !strings.Contains(strings.ToLower(val), indicator) {
			return true
		}
		if text := flattenText(s); wordCount(text) > minWords {
			found = text
			return false
		}
		return true
	})
	return found, found != ""
}

// accept flattens a selection and keeps it when it clears the threshold.
func accept(sel *goquery.Selection, minWords int) (string, bool) {
	if sel.Length() == 0 {
		return "", false
	}
	text := flattenText(sel)
	if wordCount(text) > minWords {
		return text, true
	}
	return "", false
}

// flattenText joins the trimmed text nodes under the selection with single
// spaces, in document order.
func flattenText(sel *goquery.Selection) string {
	var parts []string
	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
