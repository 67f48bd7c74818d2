package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-research-assistant-be/pkg/rag/state"
)

type staticTokens struct {
	token string
	err   error
}

func (s *staticTokens) AccessToken(ctx context.Context, userID string) (string, error) {
	return s.token, s.err
}

func TestSearchWithoutLinkedAccount(t *testing.T) {
	c := NewClient("http://unused", &staticTokens{token: ""})

	results, err := c.Search(context.Background(), "show my repos", "user-1", 5)
	if err != nil {
		t.Fatalf("missing token must not error: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results, got %v", results)
	}
}

func TestSearchTokenResolverFailure(t *testing.T) {
	c := NewClient("http://unused", &staticTokens{err: errors.New("db down")})

	if _, err := c.Search(context.Background(), "q", "user-1", 5); err == nil {
		t.Fatal("expected resolver error to propagate")
	}
}

func TestSearchListsRepositoriesForListingQuestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/repos" {
			t.Errorf("expected repo listing endpoint, got %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); !strings.Contains(auth, "tok-123") {
			t.Errorf("oauth token not forwarded: %q", auth)
		}
		json.NewEncoder(w).Encode([]repoPayload{
			{FullName: "octocat/hello", Description: "demo", HTMLURL: "https://github.com/octocat/hello", Language: "Go"},
			{FullName: "octocat/spoon", HTMLURL: "https://github.com/octocat/spoon"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{token: "tok-123"})
	results, err := c.Search(context.Background(), "list my repositories", "user-1", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 repositories, got %d", len(results))
	}
	if results[0].Kind != state.SourceCodeRepository || results[0].RelevanceScore != 0.8 {
		t.Errorf("unexpected repo result: %+v", results[0])
	}
	if !strings.Contains(results[0].Snippet, "(Go)") {
		t.Errorf("language missing from snippet: %q", results[0].Snippet)
	}
}

func TestSearchCodeForContentQuestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/code" {
			t.Errorf("expected code search endpoint, got %s", r.URL.Path)
		}
		q := r.URL.Query().Get("q")
		if !strings.Contains(q, "token") || !strings.Contains(q, "validation") {
			t.Errorf("significant terms missing from query: %q", q)
		}
		var payload codeSearchPayload
		payload.Items = []struct {
			Name       string `json:"name"`
			Path       string `json:"path"`
			HTMLURL    string `json:"html_url"`
			Repository struct {
				FullName string `json:"full_name"`
			} `json:"repository"`
		}{
			{
				Name:    "auth.go",
				Path:    "internal/auth/auth.go",
				HTMLURL: "https://github.com/octocat/hello/blob/main/internal/auth/auth.go",
			},
		}
		payload.Items[0].Repository.FullName = "octocat/hello"
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{token: "tok-123"})
	results, err := c.Search(context.Background(), "where is the token validation implemented", "user-1", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 code hit, got %d", len(results))
	}
	if results[0].RelevanceScore != 0.7 {
		t.Errorf("code hits carry the flat 0.7 tier, got %v", results[0].RelevanceScore)
	}
	if results[0].Title != "octocat/hello/internal/auth/auth.go" {
		t.Errorf("unexpected title: %q", results[0].Title)
	}
}

func TestSearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &staticTokens{token: "tok-123"})
	if _, err := c.Search(context.Background(), "list my repos", "user-1", 5); err == nil {
		t.Fatal("expected an error on non-200 response")
	}
}

func TestIsListingQuestion(t *testing.T) {
	tests := []struct {
		question string
		want     bool
	}{
		{"list my repositories", true},
		{"show me what I have", true},
		{"what repos do I own", true},
		{"where is the auth middleware", false},
		{"explain the retry logic", false},
	}
	for _, tt := range tests {
		if got := isListingQuestion(tt.question); got != tt.want {
			t.Errorf("isListingQuestion(%q) = %v, want %v", tt.question, got, tt.want)
		}
	}
}

func TestSearchTerms(t *testing.T) {
	got := searchTerms("Where is the token validation implemented?")
	if got != "where the token validation implemented" {
		t.Errorf("unexpected terms: %q", got)
	}
	if searchTerms("a b") != "a b" {
		t.Error("all-filler question must fall back to the raw question")
	}
}
