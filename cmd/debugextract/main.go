// debugextract runs the production extraction cascade and the go-readability
// library side by side on one page, so cascade regressions on a live URL can
// be diagnosed without a full pipeline run.
//
//	debugextract https://www.cdc.gov/arthritis/index.html
//	debugextract ./page.html
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/healthtextlab/medread/internal/dataset"
	"github.com/healthtextlab/medread/internal/extract"
	"github.com/healthtextlab/medread/internal/fetch"
	"github.com/healthtextlab/medread/internal/normalize"
)

const minWords = 50

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: debugextract <url-or-file>")
		os.Exit(2)
	}
	target := os.Args[1]

	raw, src, err := load(target)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load:", err)
		os.Exit(1)
	}
	fmt.Printf("source: %s (%d bytes)\n\n", target, len(raw))

	for _, ex := range []extract.Extractor{extract.Cascade{}, shioriReadability{pageURL: src}} {
		res, err := ex.Extract(raw, minWords)
		if err != nil {
			fmt.Printf("[%s] error: %v\n\n", ex.Name(), err)
			continue
		}
		text := normalize.Clean(res.Text)
		fmt.Printf("[%s] strategy=%s words=%d sentences=%d\n%s\n\n",
			ex.Name(), res.Strategy, normalize.WordCount(text), normalize.SentenceCount(text), preview(text))
	}
}

// shioriReadability wraps the go-readability library as a reference tactic.
// It reports a single fixed strategy name since the library has no cascade.
type shioriReadability struct {
	pageURL *url.URL
}

func (shioriReadability) Name() string { return "go-readability" }

func (s shioriReadability) Extract(rawHTML []byte, _ int) (extract.Result, error) {
	article, err := readability.FromReader(strings.NewReader(string(rawHTML)), s.pageURL)
	if err != nil {
		return extract.Result{}, err
	}
	return extract.Result{Text: article.TextContent, Strategy: "readability"}, nil
}

func load(target string) ([]byte, *url.URL, error) {
	if b, err := os.ReadFile(target); err == nil {
		return b, &url.URL{Scheme: "file", Path: target}, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, nil, err
	}
	client := &fetch.Client{
		HTTPClient: &http.Client{},
		UserAgent:  "debugextract/1.0",
		Timeout:    20 * time.Second,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()
	res := client.Fetch(ctx, target)
	if res.Status != dataset.StatusSuccess {
		return nil, nil, fmt.Errorf("fetch %s: %s (%s)", target, res.Status, res.Reason)
	}
	return res.Body, u, nil
}

func preview(text string) string {
	const limit = 400
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "…"
}
