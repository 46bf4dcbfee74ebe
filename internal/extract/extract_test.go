package extract

import (
	"errors"
	"strings"
	"testing"
)

const longPassage = `Blood pressure readings consist of two numbers measured in
millimeters of mercury. The systolic value records pressure while the heart
beats and the diastolic value records pressure between beats. Readings vary
through the day with activity, stress, and medication, so clinicians ask for
several measurements over time before making a diagnosis of hypertension in
otherwise healthy adults.`

func mustPrepare(t *testing.T, html string) *Document {
	t.Helper()
	doc, err := Prepare([]byte(html))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	return doc
}

func TestMainContentPrefersArticle(t *testing.T) {
	html := `<html><head><title>BP Guide</title></head><body>
		<nav>site navigation links</nav>
		<article>` + longPassage + `</article>
		<div class="post-content">` + longPassage + `</div>
		<footer>footer boilerplate</footer>
	</body></html>`

	doc := mustPrepare(t, html)
	res, err := doc.MainContent(10)
	if err != nil {
		t.Fatalf("MainContent: %v", err)
	}
	if res.Strategy != StrategyArticle {
		t.Fatalf("strategy = %q, want %q despite qualifying indicator div", res.Strategy, StrategyArticle)
	}
	if !strings.Contains(res.Text, "systolic value") {
		t.Fatalf("article text missing from result: %q", res.Text)
	}
	if strings.Contains(res.Text, "navigation") || strings.Contains(res.Text, "footer") {
		t.Fatalf("stripped element text leaked into result: %q", res.Text)
	}
}

func TestMainContentSkipsShortArticle(t *testing.T) {
	html := `<html><body>
		<article>too short</article>
		<main>` + longPassage + `</main>
	</body></html>`

	res, err := mustPrepare(t, html).MainContent(10)
	if err != nil {
		t.Fatalf("MainContent: %v", err)
	}
	if res.Strategy != StrategyMain {
		t.Fatalf("strategy = %q, want %q when article is below threshold", res.Strategy, StrategyMain)
	}
}

func TestMainContentIndicatorClass(t *testing.T) {
	html := `<html><body>
		<div class="sidebar">short sidebar</div>
		<div class="page-content">` + longPassage + `</div>
	</body></html>`

	res, err := mustPrepare(t, html).MainContent(10)
	if err != nil {
		t.Fatalf("MainContent: %v", err)
	}
	if res.Strategy != StrategyIndicator {
		t.Fatalf("strategy = %q, want %q", res.Strategy, StrategyIndicator)
	}
	if !strings.Contains(res.Text, "diastolic") {
		t.Fatalf("indicator text missing: %q", res.Text)
	}
}

func TestMainContentIndicatorID(t *testing.T) {
	html := `<html><body>
		<div class="wrapper"><div id="story-area">` + longPassage + `</div></div>
	</body></html>`

	res, err := mustPrepare(t, html).MainContent(10)
	if err != nil {
		t.Fatalf("MainContent: %v", err)
	}
	if res.Strategy != StrategyIndicator {
		t.Fatalf("strategy = %q, want %q via id match", res.Strategy, StrategyIndicator)
	}
}

func TestMainContentIndicatorCaseInsensitive(t *testing.T) {
	html := `<html><body>
		<div class="Page-Content">` + longPassage + `</div>
	</body></html>`

	res, err := mustPrepare(t, html).MainContent(10)
	if err != nil {
		t.Fatalf("MainContent: %v", err)
	}
	if res.Strategy != StrategyIndicator {
		t.Fatalf("strategy = %q, want %q for mixed-case class", res.Strategy, StrategyIndicator)
	}
}

func TestMainContentParagraphFallback(t *testing.T) {
	html := `<html><body>
		<div class="wrapper">
			<p>` + longPassage + `</p>
			<p>A second paragraph with further detail on measurement technique.</p>
		</div>
	</body></html>`

	res, err := mustPrepare(t, html).MainContent(10)
	if err != nil {
		t.Fatalf("MainContent: %v", err)
	}
	if res.Strategy != StrategyParagraphs {
		t.Fatalf("strategy = %q, want %q", res.Strategy, StrategyParagraphs)
	}
	if !strings.Contains(res.Text, "second paragraph") {
		t.Fatalf("later paragraphs missing: %q", res.Text)
	}
}

func TestMainContentBodyFallbackIgnoresThreshold(t *testing.T) {
	html := `<html><body><div class="x">just five words of text</div></body></html>`

	res, err := mustPrepare(t, html).MainContent(50)
	if err != nil {
		t.Fatalf("MainContent: %v", err)
	}
	if res.Strategy != StrategyBodyText {
		t.Fatalf("strategy = %q, want %q", res.Strategy, StrategyBodyText)
	}
	if res.Text != "just five words of text" {
		t.Fatalf("body text = %q", res.Text)
	}
}

func TestMainContentEmptyDocument(t *testing.T) {
	doc := mustPrepare(t, "<html><body><script>var x;</script></body></html>")
	if _, err := doc.MainContent(10); !errors.Is(err, ErrNoContent) {
		t.Fatalf("err = %v, want ErrNoContent", err)
	}
}

func TestPrepareStripsNonContent(t *testing.T) {
	html := `<html><body>
		<style>p { color: red }</style>
		<script>alert(1)</script>
		<noscript>enable javascript</noscript>
		<iframe src="x"></iframe>
		<p>` + longPassage + `</p>
	</body></html>`

	res, err := mustPrepare(t, html).MainContent(10)
	if err != nil {
		t.Fatalf("MainContent: %v", err)
	}
	for _, leak := range []string{"color: red", "alert", "enable javascript"} {
		if strings.Contains(res.Text, leak) {
			t.Fatalf("stripped content %q leaked into %q", leak, res.Text)
		}
	}
}

func TestTitle(t *testing.T) {
	doc := mustPrepare(t, `<html><head><title>  Hypertension Basics </title></head><body></body></html>`)
	if got := doc.Title(); got != "Hypertension Basics" {
		t.Fatalf("Title = %q", got)
	}
	doc = mustPrepare(t, `<html><body><p>no head</p></body></html>`)
	if got := doc.Title(); got != "" {
		t.Fatalf("Title = %q, want empty", got)
	}
}

func TestFlattenTextJoinsInlineNodes(t *testing.T) {
	html := `<html><body><p>Take <b>one</b> tablet <i>daily</i>.</p></body></html>`
	res, err := mustPrepare(t, html).MainContent(0)
	if err != nil {
		t.Fatalf("MainContent: %v", err)
	}
	if res.Text != "Take one tablet daily ." {
		t.Fatalf("flattened text = %q", res.Text)
	}
}

func TestCascadeExtractor(t *testing.T) {
	var ex Extractor = Cascade{}
	if ex.Name() != "cascade" {
		t.Fatalf("Name = %q", ex.Name())
	}
	res, err := ex.Extract([]byte(`<html><body><article>`+longPassage+`</article></body></html>`), 10)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Strategy != StrategyArticle {
		t.Fatalf("strategy = %q", res.Strategy)
	}
}
