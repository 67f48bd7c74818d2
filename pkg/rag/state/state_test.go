package state

import (
	"testing"

	"github.com/google/uuid"
)

func TestAllResultsFixedKindOrder(t *testing.T) {
	st := NewRunState("q", uuid.New(), 3)

	// Append out of order on purpose.
	st.AppendResults(SourceWeb, []RankedResult{{Kind: SourceWeb, Locator: "https://a"}})
	st.AppendResults(SourceLocalDocument, []RankedResult{{Kind: SourceLocalDocument, Locator: "doc://a#chunk-0"}})
	st.AppendResults(SourceCodeRepository, []RankedResult{{Kind: SourceCodeRepository, Locator: "owner/repo"}})

	all := st.AllResults()
	if len(all) != 3 {
		t.Fatalf("expected 3 results, got %d", len(all))
	}

	wantOrder := []SourceKind{SourceLocalDocument, SourceCodeRepository, SourceWeb}
	for i, kind := range wantOrder {
		if all[i].Kind != kind {
			t.Errorf("position %d: expected kind %s, got %s", i, kind, all[i].Kind)
		}
	}
}

func TestFirstWaveResultsExcludeWeb(t *testing.T) {
	st := NewRunState("q", uuid.New(), 3)
	st.AppendResults(SourceLocalDocument, []RankedResult{{Kind: SourceLocalDocument, Locator: "doc://a#chunk-0"}})
	st.AppendResults(SourceWeb, []RankedResult{{Kind: SourceWeb, Locator: "https://a"}})

	fw := st.FirstWaveResults()
	if len(fw) != 1 {
		t.Fatalf("expected 1 first-wave result, got %d", len(fw))
	}
	if fw[0].Kind == SourceWeb {
		t.Error("web result leaked into the first wave")
	}
}

func TestCompileSourcesDeduplicates(t *testing.T) {
	st := NewRunState("q", uuid.New(), 3)

	// Same locator retrieved twice by the same source (two web passes).
	st.AppendResults(SourceWeb, []RankedResult{
		{Kind: SourceWeb, Locator: "https://a", RelevanceScore: 0.9},
		{Kind: SourceWeb, Locator: "https://b", RelevanceScore: 0.8},
	})
	st.AppendResults(SourceWeb, []RankedResult{
		{Kind: SourceWeb, Locator: "https://a", RelevanceScore: 0.7},
	})
	// Same locator under a different kind is a distinct source.
	st.AppendResults(SourceLocalDocument, []RankedResult{
		{Kind: SourceLocalDocument, Locator: "https://a", RelevanceScore: 0.6},
	})

	sources := st.CompileSources()
	if len(sources) != 3 {
		t.Fatalf("expected 3 deduplicated sources, got %d", len(sources))
	}

	// The first occurrence wins; the score must stay exactly as produced.
	for _, s := range sources {
		if s.Kind == SourceWeb && s.Locator == "https://a" && s.RelevanceScore != 0.9 {
			t.Errorf("dedup kept the wrong occurrence: score %v", s.RelevanceScore)
		}
	}
}

func TestLatestAnswer(t *testing.T) {
	st := NewRunState("q", uuid.New(), 3)
	if st.LatestAnswer() != nil {
		t.Fatal("expected nil before the first generation pass")
	}

	st.AppendAnswer(CandidateAnswer{Text: "first"})
	st.AppendAnswer(CandidateAnswer{Text: "second"})

	if got := st.LatestAnswer().Text; got != "second" {
		t.Errorf("expected latest answer %q, got %q", "second", got)
	}
}
