package generate

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"ai-research-assistant-be/internal/constant"
	"ai-research-assistant-be/pkg/llm"
	"ai-research-assistant-be/pkg/rag/state"
)

type scriptedLLM struct {
	response string
	err      error
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func sampleResults() map[state.SourceKind][]state.RankedResult {
	return map[state.SourceKind][]state.RankedResult{
		state.SourceWeb: {
			{Kind: state.SourceWeb, Title: "Docs", Locator: "https://example.com/docs", Snippet: "web snippet"},
		},
		state.SourceLocalDocument: {
			{Kind: state.SourceLocalDocument, Title: "thesis.pdf", Locator: "doc://thesis.pdf#chunk-2", Snippet: "local snippet"},
		},
		state.SourceKnowledgeBase: {
			{Kind: state.SourceKnowledgeBase, Title: "VPN Guide", Locator: "kb://42", Snippet: "kb snippet"},
		},
	}
}

func TestCompileContextFixedSectionOrder(t *testing.T) {
	compiled := CompileContext(sampleResults())

	local := strings.Index(compiled, "=== UPLOADED DOCUMENTS ===")
	kb := strings.Index(compiled, "=== INSTITUTIONAL RESOURCES ===")
	web := strings.Index(compiled, "=== WEB SEARCH RESULTS ===")

	if local == -1 || kb == -1 || web == -1 {
		t.Fatalf("missing section headers in compiled context:\n%s", compiled)
	}
	if !(local < kb && kb < web) {
		t.Errorf("sections out of order: local=%d kb=%d web=%d", local, kb, web)
	}
	if strings.Contains(compiled, "=== REPOSITORIES & CODE ===") {
		t.Error("empty source kind must not emit a section header")
	}
	if !strings.Contains(compiled, "doc://thesis.pdf#chunk-2") {
		t.Error("compiled context must carry locators for citation mapping")
	}
}

func TestScanCitationsResolvesOnlyPresentLocators(t *testing.T) {
	results := sampleResults()
	answer := "See the thesis (doc://thesis.pdf#chunk-2) and the web docs (https://example.com/docs). " +
		"Also doc://thesis.pdf#chunk-2 again."

	cited := ScanCitations(answer, results)
	if len(cited) != 2 {
		t.Fatalf("expected 2 distinct citations, got %d", len(cited))
	}
	// Fixed kind order: the local document comes before the web result.
	if cited[0].Locator != "doc://thesis.pdf#chunk-2" {
		t.Errorf("cited[0] = %s, want local document first", cited[0].Locator)
	}
	if cited[1].Locator != "https://example.com/docs" {
		t.Errorf("cited[1] = %s, want web result", cited[1].Locator)
	}
}

func TestScanCitationsEmptyAnswer(t *testing.T) {
	if cited := ScanCitations("", sampleResults()); len(cited) != 0 {
		t.Errorf("expected no citations, got %d", len(cited))
	}
}

func TestGenerateSuccess(t *testing.T) {
	provider := &scriptedLLM{response: "The thesis covers this (doc://thesis.pdf#chunk-2)."}
	g := NewGenerator(provider, discardLogger())

	candidate, ok := g.Generate(context.Background(), "what does the thesis cover?", sampleResults(), nil)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if len(candidate.SourcesCited) != 1 {
		t.Errorf("expected 1 resolved citation, got %d", len(candidate.SourcesCited))
	}
}

func TestGenerateFailureProducesApology(t *testing.T) {
	provider := &scriptedLLM{err: errors.New("model unavailable")}
	g := NewGenerator(provider, discardLogger())

	candidate, ok := g.Generate(context.Background(), "q", sampleResults(), nil)
	if ok {
		t.Fatal("expected ok=false on model failure")
	}
	if candidate.Text != constant.ApologyAnswer {
		t.Errorf("unexpected placeholder text: %q", candidate.Text)
	}
	if candidate.Confidence != 0 || len(candidate.SourcesCited) != 0 {
		t.Errorf("placeholder must carry zero confidence and no citations: %+v", candidate)
	}
}
