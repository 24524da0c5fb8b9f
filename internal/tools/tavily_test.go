package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilySearch(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer tvly-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"query":"gwalior","results":[
			{"title":"Gwalior","url":"https://en.wikipedia.org/wiki/Gwalior","content":"Gwalior is a city in Madhya Pradesh.","score":0.9},
			{"title":"Bhopal","url":"https://en.wikipedia.org/wiki/Bhopal","content":"Bhopal is the capital of Madhya Pradesh.","score":0.8},
			{"title":"India","url":"https://en.wikipedia.org/wiki/India","content":"New Delhi is the capital of India.","score":0.7}
		]}`))
	}))
	defer srv.Close()

	client := NewTavily(TavilyOptions{APIKey: "tvly-test", MaxResults: 2, Endpoint: srv.URL})
	out, err := client.Search(context.Background(), "gwalior state")
	require.NoError(t, err)

	assert.Equal(t, "gwalior state", got["query"])
	assert.Equal(t, "basic", got["search_depth"])
	assert.EqualValues(t, 2, got["max_results"])

	var results []TavilyResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "Gwalior", results[0].Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Bhopal", results[1].URL)
}

func TestTavilySearchEmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":null}`))
	}))
	defer srv.Close()

	out, err := NewTavily(TavilyOptions{APIKey: "k", Endpoint: srv.URL}).Search(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestTavilySearchFailures(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		handler http.HandlerFunc
		timeout time.Duration
		wantErr string
	}{
		{
			name:    "missing key",
			apiKey:  " ",
			wantErr: "API key is missing",
		},
		{
			name:   "non-2xx",
			apiKey: "k",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "invalid api key", http.StatusUnauthorized)
			},
			wantErr: "http 401",
		},
		{
			name:   "rate limited is not retried",
			apiKey: "k",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantErr: "http 429",
		},
		{
			name:   "garbage body",
			apiKey: "k",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>"))
			},
			wantErr: "failed to parse response",
		},
		{
			name:   "timeout",
			apiKey: "k",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			},
			timeout: 20 * time.Millisecond,
			wantErr: "request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				if tt.handler != nil {
					tt.handler(w, r)
				}
			}))
			defer srv.Close()

			opts := TavilyOptions{APIKey: tt.apiKey, Endpoint: srv.URL}
			if tt.timeout > 0 {
				opts.HTTPClient = &http.Client{Timeout: tt.timeout}
			}

			_, err := NewTavily(opts).Search(context.Background(), "q")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.handler != nil && tt.timeout == 0 {
				assert.EqualValues(t, 1, calls.Load())
			}
		})
	}
}
