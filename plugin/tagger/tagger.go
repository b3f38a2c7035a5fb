// Package tagger suggests tags for a memo body using the reasoning service.
package tagger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/rabithua/memoask/plugin/llm"
	"github.com/rabithua/memoask/store"
)

const (
	maxTokens    = 64
	systemPrompt = "You generate concise tags for memos."
)

// Generator turns memo bodies into at most store.MaxTagsPerMemo raw tags.
// Tags are normalized later, when they are attached.
type Generator struct {
	reasoner llm.Reasoner
	model    string
	logger   *zap.Logger
}

func NewGenerator(reasoner llm.Reasoner, model string, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		reasoner: reasoner,
		model:    model,
		logger:   logger,
	}
}

func buildPrompt(body string) string {
	return fmt.Sprintf(`You are a tagger. Read the memo content and return 1 to %d tags.
Return ONLY a JSON array of lowercase strings without '#'.
Example: ["meeting","todo"]

Content:
%s
`, store.MaxTagsPerMemo, body)
}

// Generate asks the model for tags. An unparseable reply falls back to the
// first unique alphabetic words of body; a failed call yields no tags.
func (g *Generator) Generate(ctx context.Context, body string) []string {
	resp, err := g.reasoner.Invoke(ctx, &llm.Request{
		Model: g.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: buildPrompt(body)},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		g.logger.Warn("tagging failed", zap.Error(err))
		return nil
	}

	var values []any
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Text)), &values); err != nil {
		g.logger.Debug("tag reply is not a JSON array, falling back to words", zap.String("reply", resp.Text))
		return fallbackTags(body)
	}

	tags := make([]string, 0, store.MaxTagsPerMemo)
	for _, value := range values {
		if len(tags) == store.MaxTagsPerMemo {
			break
		}
		if s, ok := value.(string); ok {
			tags = append(tags, s)
		} else {
			tags = append(tags, fmt.Sprint(value))
		}
	}
	return tags
}

func fallbackTags(body string) []string {
	seen := map[string]bool{}
	tags := []string{}
	for _, word := range strings.Fields(strings.ToLower(body)) {
		if len(tags) == store.MaxTagsPerMemo {
			break
		}
		if !isAlpha(word) || seen[word] {
			continue
		}
		seen[word] = true
		tags = append(tags, word)
	}
	return tags
}

func isAlpha(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return word != ""
}
