package search

import (
	"strings"

	"github.com/rhuss/xsearch/pkg/xai"
)

// searchTool builds the x_search configuration for search_posts. The
// configured exclusions apply here only; xAI rejects a tool carrying both
// allowed and excluded handle lists.
func searchTool(from, to string, excluded []string) xai.Tool {
	return xai.Tool{
		Type:             xai.ToolTypeXSearch,
		FromDate:         from,
		ToDate:           to,
		ExcludedXHandles: normalizeHandles(excluded),
	}
}

// userTool scopes x_search to a single handle.
func userTool(handle, from, to string) xai.Tool {
	return xai.Tool{
		Type:            xai.ToolTypeXSearch,
		FromDate:        from,
		ToDate:          to,
		AllowedXHandles: []string{handle},
	}
}

// trendingTool enables x_search without scoping.
func trendingTool() xai.Tool {
	return xai.Tool{Type: xai.ToolTypeXSearch}
}

func normalizeHandles(handles []string) []string {
	var out []string
	for _, h := range handles {
		h = strings.TrimPrefix(strings.TrimSpace(h), "@")
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}
