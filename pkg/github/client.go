package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"ai-research-assistant-be/internal/constant"
	"ai-research-assistant-be/pkg/rag/state"
)

const (
	defaultBaseURL = "https://api.github.com"
	// Fixed scores: the search API ranks by its own relevance but does not
	// expose a comparable score, so repository and code hits get flat tiers.
	repoScore = 0.8
	codeScore = 0.7
)

// TokenResolver yields the GitHub OAuth token stored for one user, or an
// empty string when the user never linked an account.
type TokenResolver interface {
	AccessToken(ctx context.Context, userID string) (string, error)
}

// Client queries the GitHub REST API on behalf of a user. Without a linked
// token it degrades to empty results rather than erroring, so the pipeline
// simply sees nothing from this source.
type Client struct {
	baseURL string
	tokens  TokenResolver
}

func NewClient(baseURL string, tokens TokenResolver) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
	}
}

// Search runs the question against the user's repositories. Listing-style
// questions ("list my repos") enumerate the user's own repositories; anything
// else goes through code search scoped to repositories the token can see.
func (c *Client) Search(ctx context.Context, question, userID string, topK int) ([]state.RankedResult, error) {
	token, err := c.tokens.AccessToken(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve github token: %w", err)
	}
	if token == "" {
		return nil, nil
	}
	if topK <= 0 {
		topK = 5
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	httpClient.Timeout = 15 * time.Second

	if isListingQuestion(question) {
		return c.listRepositories(ctx, httpClient, topK)
	}
	return c.searchCode(ctx, httpClient, question, topK)
}

// --- REST payloads (Internal to this package) ---

type repoPayload struct {
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	HTMLURL     string `json:"html_url"`
	Language    string `json:"language"`
}

type codeSearchPayload struct {
	Items []struct {
		Name       string `json:"name"`
		Path       string `json:"path"`
		HTMLURL    string `json:"html_url"`
		Repository struct {
			FullName string `json:"full_name"`
		} `json:"repository"`
	} `json:"items"`
}

func (c *Client) listRepositories(ctx context.Context, httpClient *http.Client, topK int) ([]state.RankedResult, error) {
	endpoint := fmt.Sprintf("%s/user/repos?sort=updated&per_page=%d", c.baseURL, topK)

	var repos []repoPayload
	if err := c.getJSON(ctx, httpClient, endpoint, &repos); err != nil {
		return nil, err
	}

	results := make([]state.RankedResult, 0, len(repos))
	for _, r := range repos {
		snippet := r.Description
		if r.Language != "" {
			snippet = strings.TrimSpace(snippet + " (" + r.Language + ")")
		}
		results = append(results, state.RankedResult{
			Kind:           state.SourceCodeRepository,
			Title:          r.FullName,
			Snippet:        snippet,
			Locator:        r.HTMLURL,
			RelevanceScore: repoScore,
		})
	}
	return results, nil
}

func (c *Client) searchCode(ctx context.Context, httpClient *http.Client, question string, topK int) ([]state.RankedResult, error) {
	endpoint := fmt.Sprintf("%s/search/code?q=%s&per_page=%d",
		c.baseURL, url.QueryEscape(searchTerms(question)), topK)

	var payload codeSearchPayload
	if err := c.getJSON(ctx, httpClient, endpoint, &payload); err != nil {
		return nil, err
	}

	results := make([]state.RankedResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		results = append(results, state.RankedResult{
			Kind:           state.SourceCodeRepository,
			Title:          item.Repository.FullName + "/" + item.Path,
			Snippet:        fmt.Sprintf("File %s in repository %s", item.Name, item.Repository.FullName),
			Locator:        item.HTMLURL,
			RelevanceScore: codeScore,
		})
	}
	return results, nil
}

func (c *Client) getJSON(ctx context.Context, httpClient *http.Client, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// isListingQuestion detects "show me my repositories" style questions that
// map to an enumeration rather than a code search.
func isListingQuestion(question string) bool {
	q := strings.ToLower(question)
	for _, keyword := range constant.CodeListingKeywords {
		if strings.Contains(q, keyword) {
			return true
		}
	}
	return false
}

// searchTerms strips filler so the code search query carries only the
// significant words of the question.
func searchTerms(question string) string {
	var terms []string
	for _, word := range strings.Fields(strings.ToLower(question)) {
		word = strings.Trim(word, "?.,!\"'")
		if len(word) < 3 {
			continue
		}
		terms = append(terms, word)
		if len(terms) == 6 {
			break
		}
	}
	if len(terms) == 0 {
		return question
	}
	return strings.Join(terms, " ")
}
