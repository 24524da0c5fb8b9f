package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

const (
	// DefaultTavilyEndpoint is the public Tavily search API
	DefaultTavilyEndpoint = "https://api.tavily.com/search"
	defaultMaxResults     = 5
)

// TavilyOptions configures a Tavily client. The API key is required.
type TavilyOptions struct {
	APIKey     string
	Depth      string // "basic" or "advanced"
	MaxResults int
	Endpoint   string
	HTTPClient *http.Client
	Logger     logr.Logger
}

// Tavily calls the Tavily search API. One request per search, no retries.
type Tavily struct {
	apiKey     string
	depth      string
	maxResults int
	endpoint   string
	client     *http.Client
	log        logr.Logger
}

// TavilyResult is one hit as forwarded to the model
type TavilyResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// NewTavily constructs a Tavily search client
func NewTavily(opts TavilyOptions) *Tavily {
	t := &Tavily{
		apiKey:     opts.APIKey,
		depth:      opts.Depth,
		maxResults: opts.MaxResults,
		endpoint:   opts.Endpoint,
		client:     opts.HTTPClient,
		log:        opts.Logger,
	}
	if t.depth == "" {
		t.depth = "basic"
	}
	if t.maxResults <= 0 {
		t.maxResults = defaultMaxResults
	}
	if t.endpoint == "" {
		t.endpoint = DefaultTavilyEndpoint
	}
	if t.client == nil {
		t.client = &http.Client{Timeout: 10 * time.Second}
	}
	if t.log.GetSink() == nil {
		t.log = logr.Discard()
	}
	return t
}

// Search posts a query to Tavily and returns the hits as a JSON array
func (t *Tavily) Search(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(t.apiKey) == "" {
		return "", errors.New("tavily: API key is missing")
	}

	payload, err := json.Marshal(map[string]any{
		"query":        query,
		"api_key":      t.apiKey,
		"search_depth": t.depth,
		"max_results":  t.maxResults,
	})
	if err != nil {
		return "", fmt.Errorf("tavily: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("tavily: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("User-Agent", "RoriAtlas/1.0")

	t.log.V(1).Info("searching", "query", query, "depth", t.depth)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("tavily: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("tavily: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response struct {
		Results []TavilyResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("tavily: failed to parse response: %w", err)
	}

	results := response.Results
	if len(results) > t.maxResults {
		results = results[:t.maxResults]
	}
	if results == nil {
		results = []TavilyResult{}
	}

	out, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("tavily: failed to encode results: %w", err)
	}

	t.log.V(1).Info("search complete", "query", query, "results", len(results))
	return string(out), nil
}
