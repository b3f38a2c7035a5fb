package rag

import (
	"github.com/rabithua/memoask/plugin/llm"
)

const (
	// ToolSearchMemos searches memos by keyword and visibility settings.
	ToolSearchMemos = "search_memos"
	// ToolGetAuthorByBody finds who wrote a memo containing a keyword.
	ToolGetAuthorByBody = "get_author_by_body"
)

// Tools returns the capabilities offered to the model. A fresh copy is built
// on every call.
func Tools() []llm.Tool {
	return []llm.Tool{
		{
			Name:        ToolSearchMemos,
			Description: "Search for memos by keyword and visibility settings.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"keyword":        map[string]any{"type": "string"},
					"include_secret": map[string]any{"type": "boolean"},
				},
				"required": []string{"keyword", "include_secret"},
			},
		},
		{
			Name:        ToolGetAuthorByBody,
			Description: "Find the user who wrote a memo containing a given keyword.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"keyword": map[string]any{"type": "string"},
				},
				"required": []string{"keyword"},
			},
		},
	}
}
