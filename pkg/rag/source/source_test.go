package source

import (
	"context"
	"testing"
	"time"

	"ai-research-assistant-be/pkg/rag/state"

	"github.com/google/uuid"
)

type stubKnowledgeIndex struct {
	results []state.RankedResult
	err     error
}

func (s *stubKnowledgeIndex) Query(ctx context.Context, text string, topK int) ([]state.RankedResult, error) {
	return s.results, s.err
}

type stubCodeIndex struct {
	results []state.RankedResult
}

func (s *stubCodeIndex) Query(ctx context.Context, userScope uuid.UUID, question string, topK int) ([]state.RankedResult, error) {
	return s.results, nil
}

type stubDocumentIndex struct {
	results []state.RankedResult
}

func (s *stubDocumentIndex) Query(ctx context.Context, userScope uuid.UUID, text string, topK int) ([]state.RankedResult, error) {
	return s.results, nil
}

func TestLocalDocumentSourceAlwaysEnabled(t *testing.T) {
	s := NewLocalDocumentSource(&stubDocumentIndex{}, 5, time.Second)
	for _, q := range []string{"", "anything at all", "what is my vpn"} {
		if !s.Enabled(q) {
			t.Errorf("local document source must be enabled for %q", q)
		}
	}
}

func TestKnowledgeBaseSourceKeywordGating(t *testing.T) {
	s := NewKnowledgeBaseSource(&stubKnowledgeIndex{}, 5, time.Second)

	tests := []struct {
		question string
		want     bool
	}{
		{"How do I connect to the UVA VPN?", true},
		{"how do i set up OneDrive sync", true},
		{"What is NetBadge?", true},
		{"campus parking rules", true},
		{"What is the capital of France?", false},
		{"explain transformers", false},
	}

	for _, tt := range tests {
		if got := s.Enabled(tt.question); got != tt.want {
			t.Errorf("Enabled(%q) = %v, want %v", tt.question, got, tt.want)
		}
	}
}

func TestCodeRepositorySourceKeywordGating(t *testing.T) {
	s := NewCodeRepositorySource(&stubCodeIndex{}, 5, time.Second)

	tests := []struct {
		question string
		want     bool
	}{
		{"show my GitHub repositories", true},
		{"where is the auth function implemented", true},
		{"list open pull requests", true},
		{"what did I commit yesterday", true},
		{"what's the weather today", false},
		{"summarize my thesis", false},
	}

	for _, tt := range tests {
		if got := s.Enabled(tt.question); got != tt.want {
			t.Errorf("Enabled(%q) = %v, want %v", tt.question, got, tt.want)
		}
	}
}

func TestWebSourceAlwaysEnabled(t *testing.T) {
	s := NewWebSource(&stubWebSearcher{}, 5, time.Second)
	if !s.Enabled("anything") {
		t.Error("web source must always be enabled; the sufficiency gate decides its use")
	}
}

type stubWebSearcher struct {
	results []state.RankedResult
}

func (s *stubWebSearcher) Search(ctx context.Context, text string, topK int) ([]state.RankedResult, error) {
	return s.results, nil
}

func TestRetrieveBoundedCapsToTopK(t *testing.T) {
	many := make([]state.RankedResult, 8)
	s := NewKnowledgeBaseSource(&stubKnowledgeIndex{results: many}, 3, time.Second)

	got, err := s.Retrieve(context.Background(), "uva question", uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected topK=3 results, got %d", len(got))
	}
}

func TestRetrieveBoundedTimeout(t *testing.T) {
	slow := func(ctx context.Context) ([]state.RankedResult, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return nil, nil
		}
	}

	start := time.Now()
	_, err := retrieveBounded(context.Background(), 30*time.Millisecond, 5, slow)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if time.Since(start) > time.Second {
		t.Error("timeout did not bound the call")
	}
}
