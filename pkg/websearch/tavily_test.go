package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"ai-research-assistant-be/pkg/rag/state"
)

func tavilyServer(t *testing.T, hits *int32, answer string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)

		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req tavilySearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.APIKey != "test-key" {
			t.Errorf("api key not forwarded: %q", req.APIKey)
		}
		if !req.IncludeAnswer {
			t.Error("include_answer must be requested")
		}

		resp := tavilySearchResponse{Answer: answer}
		resp.Results = []struct {
			Title   string  `json:"title"`
			URL     string  `json:"url"`
			Content string  `json:"content"`
			Score   float64 `json:"score"`
		}{
			{Title: "Result A", URL: "https://a.example.com", Content: "content a", Score: 0.92},
			{Title: "Result B", URL: "https://b.example.com", Content: "content b", Score: 0.85},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestTavilySearchMapsResults(t *testing.T) {
	var hits int32
	srv := tavilyServer(t, &hits, "a short ai summary")
	defer srv.Close()

	c := NewTavilyClient("test-key", srv.URL)
	results, err := c.Search(context.Background(), "what is pgvector", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected summary + 2 results, got %d", len(results))
	}
	if results[0].Locator != "tavily:summary" || results[0].RelevanceScore != 1.0 {
		t.Errorf("summary must be pinned first with score 1.0: %+v", results[0])
	}
	if results[1].Kind != state.SourceWeb || results[1].Locator != "https://a.example.com" {
		t.Errorf("unexpected first result: %+v", results[1])
	}
}

func TestTavilySearchNoSummary(t *testing.T) {
	var hits int32
	srv := tavilyServer(t, &hits, "")
	defer srv.Close()

	c := NewTavilyClient("test-key", srv.URL)
	results, err := c.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results without summary row, got %d", len(results))
	}
}

func TestTavilySearchCachesRepeatQueries(t *testing.T) {
	var hits int32
	srv := tavilyServer(t, &hits, "summary")
	defer srv.Close()

	c := NewTavilyClient("test-key", srv.URL)
	for i := 0; i < 3; i++ {
		if _, err := c.Search(context.Background(), "same query", 5); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("expected 1 upstream call, got %d", got)
	}

	// A different topK is a different cache entry.
	if _, err := c.Search(context.Background(), "same query", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("expected 2 upstream calls after topK change, got %d", got)
	}
}

func TestTavilySearchMissingKey(t *testing.T) {
	c := NewTavilyClient("", "http://unused")
	if _, err := c.Search(context.Background(), "q", 5); err == nil {
		t.Fatal("expected an error without an api key")
	}
}

func TestTavilySearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewTavilyClient("test-key", srv.URL)
	if _, err := c.Search(context.Background(), "q", 5); err == nil {
		t.Fatal("expected an error on non-200 response")
	}
}
