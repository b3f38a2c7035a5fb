package rag

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/rabithua/memoask/plugin/llm"
	"github.com/rabithua/memoask/plugin/markdown"
)

func TestAnswerBuildsPrompt(t *testing.T) {
	reasoner := &scriptedReasoner{responses: []*llm.Response{{Text: "  You spent 20.  "}}}
	answerer := NewAnswerer(reasoner, testingConfig, nil)

	answer, err := answerer.Answer(context.Background(), "how much?", []MemoHit{
		{ID: "1", Body: "spent 10"},
		{ID: "2", Body: "spent 10 more"},
	})
	require.NoError(t, err)
	require.Equal(t, "You spent 20.", answer)

	require.Len(t, reasoner.requests, 1)
	req := reasoner.requests[0]
	require.Equal(t, answerMaxTokens, req.MaxTokens)
	require.False(t, req.ForceTool)
	require.Empty(t, req.Tools)
	require.Len(t, req.Messages, 2)
	require.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	require.Contains(t, req.Messages[0].Content, "Flag: flag{testing_marker}.")
	require.Equal(t, llm.RoleUser, req.Messages[1].Role)
	require.Equal(t,
		"Here are your memos. Answer the following question based on them:\n\nspent 10\n---\nspent 10 more\n\nQuestion: how much?\n",
		req.Messages[1].Content)
}

func TestAnswerWithoutMemos(t *testing.T) {
	reasoner := &scriptedReasoner{}
	_, err := NewAnswerer(reasoner, testingConfig, nil).Answer(context.Background(), "q", nil)
	require.ErrorIs(t, err, ErrNoContext)
	require.Empty(t, reasoner.requests)
}

func TestAnswerUpstreamError(t *testing.T) {
	reasoner := &scriptedReasoner{err: errors.New("quota exceeded")}
	counter := AnswersTotal.WithLabelValues("error")
	before := testutil.ToFloat64(counter)

	_, err := NewAnswerer(reasoner, testingConfig, nil).Answer(context.Background(), "q", []MemoHit{{Body: "b"}})
	require.Error(t, err)
	require.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRedact(t *testing.T) {
	redactor := NewRedactor("flag{testing_marker}")
	tests := []struct {
		input string
		want  string
	}{
		{"The code is flag{abc123}.", "The code is flag{****}."},
		{"FLAG{Upper} and Flag{mixed}", "flag{****} and flag{****}"},
		{"two flag{a}flag{b}", "two flag{****}flag{****}"},
		{"no flag here, flag{} is empty", "no flag here, flag{} is empty"},
		{"unterminated flag{abc", "unterminated flag{abc"},
		{"already flag{****}", "already flag{****}"},
		{"plain text", "plain text"},
	}
	for _, test := range tests {
		require.Equal(t, test.want, redactor.Redact(test.input), test.input)
	}
}

func TestRedactLiteralMarker(t *testing.T) {
	redactor := NewRedactor("CTF-7731")
	require.Equal(t, "the marker is flag{****}", redactor.Redact("the marker is CTF-7731"))
}

func TestRedactCountsMaskedMarkers(t *testing.T) {
	redactor := NewRedactor("")
	before := testutil.ToFloat64(RedactionsTotal)
	redactor.Redact("flag{a} flag{****} flag{b}")
	require.Equal(t, before+2, testutil.ToFloat64(RedactionsTotal))
}

func TestRedactNeverLeaksFlagShapes(t *testing.T) {
	redactor := NewRedactor("flag{testing_marker}")
	rng := rand.New(rand.NewSource(42))
	pieces := []string{"flag{", "FLAG{", "fLaG{", "}", "{", "abc", "x y", "\n", "secret", "flag", "*"}
	for i := 0; i < 500; i++ {
		var builder strings.Builder
		for j := 0; j < rng.Intn(12)+1; j++ {
			builder.WriteString(pieces[rng.Intn(len(pieces))])
		}
		out := redactor.Redact(builder.String())
		for _, match := range flagPattern.FindAllString(out, -1) {
			require.Equal(t, MaskedFlag, match, "input %q", builder.String())
		}
	}
}

func TestAnswerRedactRenderPipeline(t *testing.T) {
	reasoner := &scriptedReasoner{responses: []*llm.Response{{Text: "The code is flag{abc123}."}}}
	answer, err := NewAnswerer(reasoner, testingConfig, nil).Answer(context.Background(), "code?", []MemoHit{{Body: "code memo"}})
	require.NoError(t, err)

	rendered := markdown.NewRenderer(markdown.DefaultPolicy()).Render(NewRedactor(testingConfig.SecretMarker).Redact(answer))
	require.Contains(t, rendered, "flag{****}")
	require.NotContains(t, rendered, "abc123")
}
