package dataset

import "testing"

func TestHTTPErrorStatus(t *testing.T) {
	s := HTTPError(404)
	if s != Status("http_error_404") {
		t.Fatalf("expected http_error_404, got %q", s)
	}
	if !s.IsHTTPError() {
		t.Fatalf("expected IsHTTPError to be true for %q", s)
	}
	if StatusTimeout.IsHTTPError() {
		t.Fatalf("timeout must not be an http error status")
	}
}

func TestGroupValuesFiltersNilAndGroup(t *testing.T) {
	d := New("test")
	d.Append(Record{Rank: 1, SourceType: "Institutional", GFI: Float(10)})
	d.Append(Record{Rank: 2, SourceType: "Institutional", GFI: nil})
	d.Append(Record{Rank: 3, SourceType: "Private", GFI: Float(12)})

	inst := d.GroupValues("GFI", "Institutional")
	if len(inst) != 1 || inst[0] != 10 {
		t.Fatalf("expected [10], got %v", inst)
	}
	all := d.MetricValues("GFI")
	if len(all) != 2 {
		t.Fatalf("expected 2 non-nil GFI values, got %d", len(all))
	}
}

func TestScoreByColumnName(t *testing.T) {
	r := Record{SMOG: Float(9.5), MeanReadability: Float(10.25)}
	if v := r.Score("SMOG"); v == nil || *v != 9.5 {
		t.Fatalf("expected SMOG 9.5, got %v", v)
	}
	if v := r.Score("mean_readability"); v == nil || *v != 10.25 {
		t.Fatalf("expected mean_readability 10.25, got %v", v)
	}
	if v := r.Score("nope"); v != nil {
		t.Fatalf("unknown metric must return nil, got %v", v)
	}
}

func TestCounts(t *testing.T) {
	d := New("q")
	d.Append(Record{Status: StatusSuccess, SourceType: "Private"})
	d.Append(Record{Status: StatusInsufficientText, SourceType: "Private"})
	d.Append(Record{Status: StatusSuccess, SourceType: "Institutional"})
	if got := d.CountStatus(StatusSuccess); got != 2 {
		t.Fatalf("expected 2 success records, got %d", got)
	}
	if got := d.CountSource("Private"); got != 2 {
		t.Fatalf("expected 2 private records, got %d", got)
	}
}
