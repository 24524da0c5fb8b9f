package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/RoriAtlas/internal/models"
)

type stubSearcher struct {
	queries []string
	result  string
	err     error
}

func (s *stubSearcher) Search(ctx context.Context, query string) (string, error) {
	s.queries = append(s.queries, query)
	return s.result, s.err
}

func TestRegistryInvoke(t *testing.T) {
	searcher := &stubSearcher{result: `[{"title":"Gwalior"}]`}
	registry := NewRegistry()
	registry.Register(NewSearchTool(searcher))

	result, err := registry.Invoke(context.Background(), models.ToolInvocationRequest{
		ID:       "call_1",
		Name:     SearchToolName,
		Argument: "gwalior",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ToolResult{CallID: "call_1", Name: SearchToolName, Content: `[{"title":"Gwalior"}]`}, result)
	assert.Equal(t, []string{"gwalior"}, searcher.queries)
}

func TestRegistryInvokeErrors(t *testing.T) {
	boom := errors.New("connection refused")
	registry := NewRegistry()
	registry.Register(NewSearchTool(&stubSearcher{err: boom}))

	tests := []struct {
		name    string
		req     models.ToolInvocationRequest
		wantErr error
	}{
		{name: "unknown tool", req: models.ToolInvocationRequest{Name: "calculator", Argument: "1+1"}},
		{name: "empty query", req: models.ToolInvocationRequest{Name: SearchToolName, Argument: "  "}},
		{name: "search failure", req: models.ToolInvocationRequest{Name: SearchToolName, Argument: "q"}, wantErr: boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.Invoke(context.Background(), tt.req)
			var toolErr *models.ToolInvocationError
			require.True(t, errors.As(err, &toolErr), "got %T", err)
			assert.Equal(t, tt.req.Name, toolErr.Tool)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRegistryOpenAITools(t *testing.T) {
	registry := NewRegistry()
	registry.Register(NewSearchTool(&stubSearcher{}))

	defs := registry.OpenAITools()
	require.Len(t, defs, 1)
	assert.Equal(t, SearchToolName, defs[0].Function.Name)

	params := defs[0].Function.Parameters.(map[string]interface{})
	assert.Equal(t, []string{"query"}, params["required"])

	arg, ok := registry.ArgumentName(SearchToolName)
	assert.True(t, ok)
	assert.Equal(t, "query", arg)

	_, ok = registry.ArgumentName("missing")
	assert.False(t, ok)
}
