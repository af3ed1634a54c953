package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func chatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "civic problem report") {
			t.Errorf("unexpected prompt: %+v", req.Messages)
		}

		w.WriteHeader(status)
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "plain json",
			content: `{"sentiment": "urgent"}`,
			want:    "urgent",
		},
		{
			name:    "markdown code block",
			content: "```json\n{\"sentiment\": \"concerned\"}\n```",
			want:    "concerned",
		},
		{
			name:    "surrounding prose",
			content: `Here is the classification: {"sentiment": "positive"} as requested.`,
			want:    "positive",
		},
		{
			name:    "mixed case label",
			content: `{"sentiment": " Neutral "}`,
			want:    "neutral",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, http.StatusOK, tt.content)
			defer srv.Close()

			client := NewClientWithEndpoint("test-key", "gpt-4o-mini", srv.URL)
			got, err := client.Classify(context.Background(), "Broken light", "It has been dark for a week")
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if got != tt.want {
				t.Errorf("label = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyUnknownLabel(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"sentiment": "furious"}`)
	defer srv.Close()

	client := NewClientWithEndpoint("test-key", "gpt-4o-mini", srv.URL)
	if _, err := client.Classify(context.Background(), "t", "d"); err == nil {
		t.Fatal("expected error for unknown label")
	}
}

func TestClassifyMalformedContent(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "I cannot classify this report.")
	defer srv.Close()

	client := NewClientWithEndpoint("test-key", "gpt-4o-mini", srv.URL)
	if _, err := client.Classify(context.Background(), "t", "d"); err == nil {
		t.Fatal("expected error for non-JSON content")
	}
}

func TestClassifyAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClientWithEndpoint("test-key", "gpt-4o-mini", srv.URL)
	_, err := client.Classify(context.Background(), "t", "d")
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry status code, got %v", err)
	}
}

func TestClassifyNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	client := NewClientWithEndpoint("test-key", "gpt-4o-mini", srv.URL)
	if _, err := client.Classify(context.Background(), "t", "d"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestExtractJSONFromMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bare json", `{"sentiment": "urgent"}`, `{"sentiment": "urgent"}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"braces in prose", `result: {"a": 1} done`, `{"a": 1}`},
		{"no json at all", "nothing here", "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONFromMarkdown(tt.content); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
