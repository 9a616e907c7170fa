package builtin

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ternlabs/tern/internal/tool"
)

type searchArgs struct {
	Query string `json:"query" jsonschema:"description=Search phrase"`
	Limit int    `json:"limit,omitempty" jsonschema:"description=Maximum number of results"`
}

var searchDescriptor = tool.Descriptor{
	Name:        "search",
	Description: "Search the web for a phrase (simulated results)",
	Parameters:  tool.ParametersFor(&searchArgs{}),
}

const defaultSearchLimit = 3

func search(ctx context.Context, args map[string]any) (any, error) {
	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("parameter query must be a non-empty string")
	}

	limit := defaultSearchLimit
	if raw, present := args["limit"]; present {
		n, ok := raw.(float64)
		if !ok || n < 1 {
			return nil, fmt.Errorf("parameter limit must be a positive number")
		}
		limit = int(n)
	}

	results := make([]map[string]any, 0, limit)
	for i := 1; i <= limit; i++ {
		results = append(results, map[string]any{
			"title":   fmt.Sprintf("Result %d for %q", i, query),
			"url":     fmt.Sprintf("https://example.com/articles/%s/%d", url.PathEscape(strings.ToLower(query)), i),
			"snippet": fmt.Sprintf("Summary %d of material related to %s.", i, query),
		})
	}
	return map[string]any{"query": query, "results": results}, nil
}
