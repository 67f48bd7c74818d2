package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"ai-research-assistant-be/pkg/rag/state"
)

const (
	defaultBaseURL  = "https://api.tavily.com"
	defaultCacheTTL = 5 * time.Minute
	// The AI-generated summary row is pinned to the top of the results.
	summaryScore = 1.0
)

// TavilyClient searches the web through the Tavily API. Identical queries
// within the cache TTL are served from an in-process cache to keep repeat
// pipeline iterations cheap.
type TavilyClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

func NewTavilyClient(apiKey, baseURL string) *TavilyClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &TavilyClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: cache.New(defaultCacheTTL, 10*time.Minute),
	}
}

// --- Request/Response structs (Internal to this package) ---

type tavilySearchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
	MaxResults    int    `json:"max_results"`
}

type tavilySearchResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search runs one web query and maps the response into ranked results. When
// Tavily produced an AI summary it is prepended as the first result with a
// pinned score so downstream ranking keeps it on top.
func (c *TavilyClient) Search(ctx context.Context, query string, topK int) ([]state.RankedResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("tavily api key not configured")
	}
	if topK <= 0 {
		topK = 5
	}

	cacheKey := fmt.Sprintf("%s|%d", query, topK)
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]state.RankedResult), nil
	}

	reqPayload := tavilySearchRequest{
		APIKey:        c.apiKey,
		Query:         query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
		MaxResults:    topK,
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/search", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var tavilyResp tavilySearchResponse
	if err := json.Unmarshal(bodyBytes, &tavilyResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	var results []state.RankedResult
	if tavilyResp.Answer != "" {
		results = append(results, state.RankedResult{
			Kind:           state.SourceWeb,
			Title:          "Web Search Summary",
			Snippet:        tavilyResp.Answer,
			Locator:        "tavily:summary",
			RelevanceScore: summaryScore,
		})
	}
	for _, r := range tavilyResp.Results {
		results = append(results, state.RankedResult{
			Kind:           state.SourceWeb,
			Title:          r.Title,
			Snippet:        r.Content,
			Locator:        r.URL,
			RelevanceScore: r.Score,
		})
	}

	c.cache.Set(cacheKey, results, cache.DefaultExpiration)

	return results, nil
}
