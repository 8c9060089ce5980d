package search

import (
	"fmt"
	"strings"

	"github.com/rhuss/xsearch/pkg/api"
)

const systemPrompt = "You are a helpful assistant that searches X (Twitter) posts using the x_search tool. " +
	"Only report posts and trends that the search actually returned. Attribute every post to its author " +
	"and never invent posts, authors, dates or engagement numbers. Omit any field you do not know."

const jsonInstruction = "Always respond with valid JSON only, no markdown fences."

func formatName(f api.Format) string {
	if f == api.FormatJSON {
		return "JSON"
	}
	return "markdown"
}

func systemInstruction(f api.Format) string {
	if f == api.FormatJSON {
		return systemPrompt + " " + jsonInstruction
	}
	return systemPrompt
}

func searchPostsPrompt(req *api.SearchPostsRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search X (Twitter) for posts about: %s\n", req.Query)
	fmt.Fprintf(&b, "Return up to %d recent and relevant posts.", api.Limit(req.MaxResults))
	if req.Language != "" {
		fmt.Fprintf(&b, " Filter to %s language posts only.", req.Language)
	}
	b.WriteString("\n")
	b.WriteString("For each post include: author @username, display name, post text, post URL, " +
		"date/time, and engagement metrics (likes, reposts, replies) if available.\n")
	writeFormat(&b, req.Format, postsShape)
	return b.String()
}

func userPostsPrompt(req *api.UserPostsRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Find recent posts from X (Twitter) user @%s.\n", req.Handle)
	fmt.Fprintf(&b, "Return up to %d of their most recent posts.", api.Limit(req.MaxResults))
	if req.Topic != "" {
		fmt.Fprintf(&b, " Focus on posts related to: %s.", req.Topic)
	}
	b.WriteString("\n")
	b.WriteString("For each post include: post text, post URL, date/time, and engagement metrics " +
		"(likes, reposts, replies) if available.\n")
	writeFormat(&b, req.Format, postsShape)
	return b.String()
}

func trendingPrompt(req *api.TrendingRequest) string {
	var b strings.Builder
	b.WriteString("What are the current trending topics and hashtags on X (Twitter)")
	if req.Locale != "" {
		fmt.Fprintf(&b, " in %s?", req.Locale)
	} else {
		b.WriteString(" globally?")
	}
	if req.Category != "" {
		fmt.Fprintf(&b, " Focus on %s topics.", req.Category)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "List the top %d trending topics with brief descriptions of why they're trending.\n",
		api.Limit(req.MaxResults))
	writeFormat(&b, req.Format, trendsShape)
	return b.String()
}

const (
	postsShape  = `{"posts":[{"id","text","author","author_name","timestamp","url","likes","reposts","replies"}]}`
	trendsShape = `{"trends":[{"rank","topic","volume","description"}]}`
)

func writeFormat(b *strings.Builder, f api.Format, shape string) {
	fmt.Fprintf(b, "Format the output as %s.", formatName(f))
	if f == api.FormatJSON {
		fmt.Fprintf(b, " Use this shape: %s", shape)
	}
}
