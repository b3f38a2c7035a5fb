package tagger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rabithua/memoask/plugin/llm"
)

func replying(text string) llm.Reasoner {
	return llm.ReasonerFunc(func(_ context.Context, _ *llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: text}, nil
	})
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		body  string
		want  []string
	}{
		{
			name:  "json array",
			reply: `["meeting","todo"]`,
			body:  "meeting notes",
			want:  []string{"meeting", "todo"},
		},
		{
			name:  "json array is capped",
			reply: ` ["a","b","c","d"] `,
			body:  "x",
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "non string values",
			reply: `["go", 2024]`,
			body:  "x",
			want:  []string{"go", "2024"},
		},
		{
			name:  "json object is not a list",
			reply: `{"tags":["a"]}`,
			body:  "Plan the Trip trip now 2024",
			want:  []string{"plan", "the", "trip"},
		},
		{
			name:  "free text falls back to words",
			reply: "Sure! Here are some tags: travel, plans",
			body:  "Buy milk, buy eggs and buy bread",
			want:  []string{"buy", "eggs", "and"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			generator := NewGenerator(replying(test.reply), "gpt-4o-mini", nil)
			require.Equal(t, test.want, generator.Generate(context.Background(), test.body))
		})
	}
}

func TestGenerateRequest(t *testing.T) {
	var captured *llm.Request
	reasoner := llm.ReasonerFunc(func(_ context.Context, req *llm.Request) (*llm.Response, error) {
		captured = req
		return &llm.Response{Text: `[]`}, nil
	})
	tags := NewGenerator(reasoner, "gpt-4o-mini", nil).Generate(context.Background(), "memo body")
	require.Empty(t, tags)

	require.NotNil(t, captured)
	require.Equal(t, maxTokens, captured.MaxTokens)
	require.Equal(t, "gpt-4o-mini", captured.Model)
	require.Len(t, captured.Messages, 2)
	require.Contains(t, captured.Messages[1].Content, "return 1 to 3 tags")
	require.Contains(t, captured.Messages[1].Content, "Content:\nmemo body\n")
}

func TestGenerateServiceFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	reasoner := llm.ReasonerFunc(func(_ context.Context, _ *llm.Request) (*llm.Response, error) {
		return nil, errors.New("timeout")
	})

	tags := NewGenerator(reasoner, "gpt-4o-mini", zap.New(core)).Generate(context.Background(), "memo body")
	require.Nil(t, tags)
	require.Equal(t, 1, logs.FilterMessage("tagging failed").Len())
}
