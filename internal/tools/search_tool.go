package tools

import (
	"context"
	"fmt"
	"strings"
)

// SearchToolName matches the name the model is told to call
const SearchToolName = "tavily_search_results_json"

// Searcher forwards a query to a web search backend
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// SearchTool exposes a Searcher to the model
type SearchTool struct {
	searcher Searcher
}

func NewSearchTool(searcher Searcher) *SearchTool {
	return &SearchTool{searcher: searcher}
}

func (s *SearchTool) Name() string {
	return SearchToolName
}

func (s *SearchTool) Description() string {
	return "A search engine optimized for comprehensive, accurate, and trusted results. " +
		"Useful for when you need to answer questions about current events or look up facts. " +
		"Input should be a search query."
}

func (s *SearchTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"type":        "string",
			"description": "Search query to look up",
		},
	}
}

func (s *SearchTool) RequiredParameters() []string {
	return []string{"query"}
}

func (s *SearchTool) Argument() string {
	return "query"
}

func (s *SearchTool) Execute(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query parameter must be a non-empty string")
	}
	return s.searcher.Search(ctx, query)
}
