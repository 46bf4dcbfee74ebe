package narrative

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/healthtextlab/medread/internal/classify"
	"github.com/healthtextlab/medread/internal/dataset"
	"github.com/healthtextlab/medread/internal/stats"
)

func analyzed() (*dataset.Dataset, *stats.Analysis) {
	ds := dataset.New("asthma inhaler technique")
	for i := 0; i < 8; i++ {
		label := classify.Institutional
		base := 7.5
		if i >= 4 {
			label = classify.Private
			base = 11.0
		}
		v := base + 0.4*float64(i%4)
		ds.Append(dataset.Record{
			Rank: i + 1, URL: "https://example.org/" + strconv.Itoa(i),
			Domain: "example.org", Status: dataset.StatusSuccess,
			SourceType: label, Confidence: 3,
			GFI: dataset.Float(v), SMOG: dataset.Float(v),
			FKG: dataset.Float(v), ARI: dataset.Float(v),
			MeanReadability: dataset.Float(v),
		})
	}
	return ds, stats.Analyze(ds, 0.05)
}

// stubChat answers /v1/chat/completions with fixed content and captures the
// last request body.
func stubChat(t *testing.T, content string, lastBody *[]byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		b, _ := io.ReadAll(r.Body)
		*lastBody = b
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	})
	return httptest.NewServer(mux)
}

func TestSummarize(t *testing.T) {
	ds, an := analyzed()
	var body []byte
	srv := stubChat(t, "  Institutional pages were easier to read.  ", &body)
	defer srv.Close()

	s := &Summarizer{
		Client: NewOpenAIClient(srv.URL+"/v1", "test-key"),
		Model:  "test-model",
	}
	got, err := s.Summarize(context.Background(), ds, an)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "Institutional pages were easier to read." {
		t.Fatalf("narrative = %q", got)
	}
	if !strings.Contains(string(body), "asthma inhaler technique") {
		t.Fatalf("request should carry the query digest: %s", body)
	}
	if !strings.Contains(string(body), "test-model") {
		t.Fatalf("request should name the model: %s", body)
	}
}

func TestSummarizeEmptyCompletion(t *testing.T) {
	ds, an := analyzed()
	var body []byte
	srv := stubChat(t, "", &body)
	defer srv.Close()

	s := &Summarizer{Client: NewOpenAIClient(srv.URL+"/v1", ""), Model: "m"}
	if _, err := s.Summarize(context.Background(), ds, an); err == nil {
		t.Fatalf("expected error for blank completion")
	}
}

func TestSummarizeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	ds, an := analyzed()
	s := &Summarizer{Client: NewOpenAIClient(srv.URL+"/v1", ""), Model: "m"}
	if _, err := s.Summarize(context.Background(), ds, an); err == nil {
		t.Fatalf("expected error from failing backend")
	}
}

func TestSummarizeUnconfigured(t *testing.T) {
	ds, an := analyzed()
	s := &Summarizer{}
	if _, err := s.Summarize(context.Background(), ds, an); err == nil {
		t.Fatalf("expected error without a client")
	}
	s = &Summarizer{Client: NewOpenAIClient("", "")}
	if _, err := s.Summarize(context.Background(), ds, an); err == nil {
		t.Fatalf("expected error without a model")
	}
}

func TestDigestContents(t *testing.T) {
	ds, an := analyzed()
	d := Digest(ds, an)
	for _, want := range []string{
		"asthma inhaler technique",
		"Institutional sources: 4, private sources: 4",
		"GFI",
		"mean_readability",
	} {
		if !strings.Contains(d, want) {
			t.Fatalf("digest missing %q:\n%s", want, d)
		}
	}
	if strings.Contains(d, "example.org") {
		t.Fatalf("digest must not leak per-page data:\n%s", d)
	}
}
