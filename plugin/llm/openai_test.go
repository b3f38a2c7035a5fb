package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const toolCallResponse = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{
    "index": 0,
    "message": {
      "role": "assistant",
      "content": null,
      "tool_calls": [{
        "id": "call_1",
        "type": "function",
        "function": {"name": "search_memos", "arguments": "{\"keyword\":\"budget\",\"include_secret\":false}"}
      }]
    },
    "finish_reason": "tool_calls"
  }],
  "usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

const textResponse = `{
  "id": "chatcmpl-2",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{
    "index": 0,
    "message": {"role": "assistant", "content": "  The budget is 10.  "},
    "finish_reason": "stop"
  }],
  "usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

func newTestServer(t *testing.T, body string, captured *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if captured != nil {
			require.NoError(t, json.Unmarshal(raw, captured))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIInvokeToolCall(t *testing.T) {
	var captured map[string]any
	srv := newTestServer(t, toolCallResponse, &captured)

	reasoner, err := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	resp, err := reasoner.Invoke(context.Background(), &Request{
		Model: "gpt-4o-mini",
		Messages: []Message{
			{Role: RoleSystem, Content: "system"},
			{Role: RoleAssistant, Content: "Target User ID: u1"},
			{Role: RoleUser, Content: "find budget"},
		},
		Tools: []Tool{{
			Name:        "search_memos",
			Description: "Search for memos by keyword and visibility settings.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{"keyword": map[string]any{"type": "string"}},
				"required":   []string{"keyword"},
			},
		}},
		ForceTool: true,
		MaxTokens: 100,
	})
	require.NoError(t, err)
	require.Equal(t, []ToolCall{{Name: "search_memos", Arguments: `{"keyword":"budget","include_secret":false}`}}, resp.ToolCalls)

	require.Equal(t, "required", captured["tool_choice"])
	tools, ok := captured["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 1)
	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 3)
	require.Equal(t, "assistant", messages[1].(map[string]any)["role"])
}

func TestOpenAIInvokeText(t *testing.T) {
	srv := newTestServer(t, textResponse, nil)

	reasoner, err := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := reasoner.Invoke(context.Background(), &Request{
		Messages:  []Message{{Role: RoleUser, Content: "question"}},
		MaxTokens: 300,
	})
	require.NoError(t, err)
	require.Equal(t, "The budget is 10.", resp.Text)
	require.Empty(t, resp.ToolCalls)
}

func TestOpenAIInvokeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad request","type":"invalid_request_error"}}`))
	}))
	t.Cleanup(srv.Close)

	reasoner, err := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = reasoner.Invoke(context.Background(), &Request{Messages: []Message{{Role: RoleUser, Content: "q"}}})
	require.Error(t, err)
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI(OpenAIConfig{})
	require.Error(t, err)
}

func TestReasonerFunc(t *testing.T) {
	var got *Request
	r := ReasonerFunc(func(ctx context.Context, req *Request) (*Response, error) {
		got = req
		return &Response{Text: "ok"}, nil
	})
	resp, err := r.Invoke(context.Background(), &Request{Model: "m"})
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Text)
	require.Equal(t, "m", got.Model)
}
