package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rabithua/memoask/plugin/llm"
)

const (
	// toolSelectionMaxTokens bounds the tool-choosing call.
	toolSelectionMaxTokens = 100

	retrieverSystemPrompt = "You are an assistant that helps search user memos using the available tools."
)

// Config holds the settings shared by the retrieval and answer stages.
type Config struct {
	Model        string
	SuperAdminID string
	SecretMarker string
}

// Retriever lets the reasoning model pick one retrieval tool and runs it on
// behalf of the caller.
type Retriever struct {
	reasoner llm.Reasoner
	searcher *Searcher
	authors  *AuthorFinder
	model    string
	logger   *zap.Logger
}

func NewRetriever(reasoner llm.Reasoner, memos MemoFinder, cfg Config, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		reasoner: reasoner,
		searcher: NewSearcher(memos),
		authors:  NewAuthorFinder(memos, cfg.SuperAdminID),
		model:    cfg.Model,
		logger:   logger,
	}
}

type searchArgs struct {
	Keyword       *string `json:"keyword"`
	IncludeSecret *bool   `json:"include_secret"`
}

type authorArgs struct {
	Keyword *string `json:"keyword"`
}

// Retrieve asks the model to choose exactly one tool for query and executes
// the first call it returns. callerID always comes from the session and
// otherUserID from the request; neither can be supplied by the model.
// Every failure collapses into a KindNone result.
func (r *Retriever) Retrieve(ctx context.Context, query, callerID, otherUserID string) Result {
	if strings.TrimSpace(query) == "" || callerID == "" {
		return noneResult()
	}

	resp, err := r.reasoner.Invoke(ctx, &llm.Request{
		Model: r.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: retrieverSystemPrompt},
			{Role: llm.RoleAssistant, Content: "Target User ID: " + callerID},
			{Role: llm.RoleUser, Content: query},
		},
		Tools:     Tools(),
		ForceTool: true,
		MaxTokens: toolSelectionMaxTokens,
	})
	if err != nil {
		r.logger.Warn("tool selection failed", zap.Error(err))
		RetrievalsTotal.WithLabelValues("", outcomeUpstreamError).Inc()
		return noneResult()
	}
	if len(resp.ToolCalls) == 0 {
		r.logger.Info("model issued no tool call")
		RetrievalsTotal.WithLabelValues("", outcomeNoToolCall).Inc()
		return noneResult()
	}

	call := resp.ToolCalls[0]
	r.logger.Info("rag tool call", zap.String("tool", call.Name), zap.String("arguments", call.Arguments))

	switch call.Name {
	case ToolGetAuthorByBody:
		return r.findAuthor(ctx, call)
	case ToolSearchMemos:
		return r.searchMemos(ctx, call, callerID, otherUserID)
	default:
		r.logger.Warn("model called an unknown tool", zap.String("tool", call.Name))
		RetrievalsTotal.WithLabelValues("", outcomeUnknownTool).Inc()
		return noneResult()
	}
}

func (r *Retriever) findAuthor(ctx context.Context, call llm.ToolCall) Result {
	var args authorArgs
	if err := decodeArguments(call.Arguments, &args); err != nil || args.Keyword == nil || *args.Keyword == "" {
		r.logger.Warn("malformed tool arguments", zap.String("tool", call.Name), zap.Error(err))
		RetrievalsTotal.WithLabelValues(call.Name, outcomeMalformedArgs).Inc()
		return noneResult()
	}

	hit, err := r.authors.FindAuthor(ctx, *args.Keyword)
	if err != nil {
		r.logger.Warn("author lookup failed", zap.Error(err))
		RetrievalsTotal.WithLabelValues(call.Name, outcomeStoreError).Inc()
		return noneResult()
	}
	if hit == nil {
		RetrievalsTotal.WithLabelValues(call.Name, outcomeEmpty).Inc()
		return noneResult()
	}
	RetrievalsTotal.WithLabelValues(call.Name, outcomeHit).Inc()
	return authorResult(*hit)
}

func (r *Retriever) searchMemos(ctx context.Context, call llm.ToolCall, callerID, otherUserID string) Result {
	var args searchArgs
	if err := decodeArguments(call.Arguments, &args); err != nil || args.Keyword == nil || *args.Keyword == "" {
		r.logger.Warn("malformed tool arguments", zap.String("tool", call.Name), zap.Error(err))
		RetrievalsTotal.WithLabelValues(call.Name, outcomeMalformedArgs).Inc()
		return noneResult()
	}
	keyword := *args.Keyword
	includeSecret := args.IncludeSecret != nil && *args.IncludeSecret

	base, err := r.searcher.Search(ctx, callerID, keyword, includeSecret, callerID)
	if err != nil {
		r.logger.Warn("memo search failed", zap.Error(err))
		RetrievalsTotal.WithLabelValues(call.Name, outcomeStoreError).Inc()
		return noneResult()
	}
	r.logger.Debug("rag base memos", zap.Int("count", len(base)))

	hits := base
	if otherUserID != "" && otherUserID != callerID {
		other, err := r.searcher.Search(ctx, callerID, keyword, includeSecret, otherUserID)
		if err != nil {
			r.logger.Warn("memo search failed", zap.Error(err))
			RetrievalsTotal.WithLabelValues(call.Name, outcomeStoreError).Inc()
			return noneResult()
		}
		r.logger.Debug("rag other memos", zap.Int("count", len(other)))
		hits = append(hits, other...)
	}

	result := memosResult(hits)
	if result.Kind == KindNone {
		RetrievalsTotal.WithLabelValues(call.Name, outcomeEmpty).Inc()
	} else {
		RetrievalsTotal.WithLabelValues(call.Name, outcomeHit).Inc()
	}
	return result
}

// decodeArguments strictly decodes a model-produced JSON object: unknown
// fields, type mismatches and trailing data are rejected.
func decodeArguments(raw string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after arguments")
	}
	return nil
}
