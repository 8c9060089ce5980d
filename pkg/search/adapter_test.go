package search

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rhuss/xsearch/pkg/api"
	"github.com/rhuss/xsearch/pkg/xai"
)

// stubUpstream records every request and answers with a fixed body or error.
type stubUpstream struct {
	body     string
	err      error
	calls    int
	requests []*xai.Request
	keys     []string
}

func (s *stubUpstream) Create(ctx context.Context, apiKey string, req *xai.Request) (*xai.Response, error) {
	s.calls++
	s.requests = append(s.requests, req)
	s.keys = append(s.keys, apiKey)
	if s.err != nil {
		return nil, s.err
	}
	return xai.ParseResponse([]byte(s.body))
}

func textAnswer(t *testing.T, text string, citations ...string) string {
	t.Helper()
	body := map[string]any{
		"id":     "resp_test",
		"status": "completed",
		"output": []any{
			map[string]any{"type": "x_search_call", "status": "completed"},
			map[string]any{
				"type": "message",
				"role": "assistant",
				"content": []any{
					map[string]any{"type": "output_text", "text": text},
				},
			},
		},
		"citations": citations,
	}
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal answer: %v", err)
	}
	return string(data)
}

func staticKey(key string) CredentialResolver {
	return func() (string, error) { return key, nil }
}

func missingKey() (string, error) {
	return xai.ResolveCredential(func(string) (string, bool) { return "", false }, xai.DefaultAPIKeyEnv)
}

func intPtr(n int) *int { return &n }

func errorType(t *testing.T, err error) api.ErrorType {
	t.Helper()
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.Error, got %T: %v", err, err)
	}
	return apiErr.Type
}

func TestSearchPosts_Markdown(t *testing.T) {
	up := &stubUpstream{body: textAnswer(t, "  **@golang**: Go 1.24 is out!  ")}
	a := New(up, staticKey("k-123"), Options{ExcludedHandles: []string{"@spam"}})

	out, err := a.SearchPosts(context.Background(), &api.SearchPostsRequest{
		Query:    "  golang release ",
		FromDate: "2025-01-01",
		ToDate:   "2025-02-01",
		Language: "en",
	})
	if err != nil {
		t.Fatalf("SearchPosts() error: %v", err)
	}
	if out.Text != "**@golang**: Go 1.24 is out!" {
		t.Errorf("Text = %q", out.Text)
	}
	if out.Structured != nil {
		t.Error("markdown output should not carry structured content")
	}

	if up.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", up.calls)
	}
	if up.keys[0] != "k-123" {
		t.Errorf("api key = %q", up.keys[0])
	}

	req := up.requests[0]
	if len(req.Tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(req.Tools))
	}
	tool := req.Tools[0]
	if tool.Type != "x_search" || tool.FromDate != "2025-01-01" || tool.ToDate != "2025-02-01" {
		t.Errorf("unexpected tool: %+v", tool)
	}
	if len(tool.AllowedXHandles) != 0 {
		t.Errorf("search_posts must not set allowed handles: %v", tool.AllowedXHandles)
	}
	if len(tool.ExcludedXHandles) != 1 || tool.ExcludedXHandles[0] != "spam" {
		t.Errorf("excluded handles = %v", tool.ExcludedXHandles)
	}
	if req.Temperature == nil || *req.Temperature != 0 {
		t.Error("temperature must be 0")
	}
	if req.Text != nil {
		t.Error("markdown requests carry no text format")
	}

	prompt := req.Input[1].Content
	for _, want := range []string{
		"Search X (Twitter) for posts about: golang release",
		"Return up to 10 recent",
		"Filter to en language posts only.",
		"Format the output as markdown.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestSearchPosts_JSON(t *testing.T) {
	answer := "```json\n" + `{"posts":[
		{"author":"@alice","text":"first","url":"https://x.com/alice/status/111","likes":10},
		{"username":"bob","content":"second","created_at":"2025-01-02T10:00:00Z","reposts":"1,204"},
		{"author":"carol","text":"third","id":"333"}
	]}` + "\n```"
	up := &stubUpstream{body: textAnswer(t, answer, "https://x.com/alice/status/111")}
	a := New(up, staticKey("k"), Options{StructuredOutputs: true})

	out, err := a.SearchPosts(context.Background(), &api.SearchPostsRequest{
		Query:      "test",
		MaxResults: intPtr(3),
		Format:     "JSON",
	})
	if err != nil {
		t.Fatalf("SearchPosts() error: %v", err)
	}

	result, ok := out.Structured.(*api.PostsResult)
	if !ok {
		t.Fatalf("Structured = %T, want *api.PostsResult", out.Structured)
	}
	if result.Count != 3 || len(result.Posts) != 3 {
		t.Fatalf("count = %d, posts = %d, want 3", result.Count, len(result.Posts))
	}
	if result.Partial {
		t.Error("result should not be partial")
	}
	if result.Query != "test" {
		t.Errorf("query = %q", result.Query)
	}

	first := result.Posts[0]
	if first.Author != "alice" || first.ID != "111" || first.Likes == nil || *first.Likes != 10 {
		t.Errorf("first post = %+v", first)
	}
	second := result.Posts[1]
	if second.Author != "bob" || second.Text != "second" || second.Timestamp != "2025-01-02T10:00:00Z" {
		t.Errorf("second post = %+v", second)
	}
	if second.Reposts == nil || *second.Reposts != 1204 {
		t.Errorf("second reposts = %v", second.Reposts)
	}
	if second.URL != "" || second.ID != "" {
		t.Errorf("second post must not gain invented fields: %+v", second)
	}
	third := result.Posts[2]
	if third.URL != "https://x.com/carol/status/333" {
		t.Errorf("third url = %q", third.URL)
	}
	if len(result.Citations) != 1 {
		t.Errorf("citations = %v", result.Citations)
	}

	var decoded api.PostsResult
	if err := json.Unmarshal([]byte(out.Text), &decoded); err != nil {
		t.Fatalf("Text is not JSON: %v", err)
	}
	if decoded.Count != 3 {
		t.Errorf("decoded count = %d", decoded.Count)
	}

	req := up.requests[0]
	if req.Text == nil || req.Text.Format.Type != "json_schema" || len(req.Text.Format.Schema) == 0 {
		t.Errorf("expected json_schema text format, got %+v", req.Text)
	}
}

func TestSearchPosts_JSONCap(t *testing.T) {
	var items []string
	for i := 0; i < 8; i++ {
		items = append(items, `{"text":"post","author":"a"}`)
	}
	up := &stubUpstream{body: textAnswer(t, "["+strings.Join(items, ",")+"]")}
	a := New(up, staticKey("k"), Options{})

	out, err := a.SearchPosts(context.Background(), &api.SearchPostsRequest{
		Query: "q", MaxResults: intPtr(5), Format: api.FormatJSON,
	})
	if err != nil {
		t.Fatalf("SearchPosts() error: %v", err)
	}
	result := out.Structured.(*api.PostsResult)
	if result.Count != 5 {
		t.Errorf("count = %d, want 5", result.Count)
	}
	if up.requests[0].Text != nil {
		t.Error("structured outputs disabled: no text format expected")
	}
}

func TestSearchPosts_JSONPartial(t *testing.T) {
	up := &stubUpstream{body: textAnswer(t, "I could not find any posts about that.")}
	a := New(up, staticKey("k"), Options{})

	out, err := a.SearchPosts(context.Background(), &api.SearchPostsRequest{Query: "q", Format: api.FormatJSON})
	if err != nil {
		t.Fatalf("SearchPosts() error: %v", err)
	}
	result := out.Structured.(*api.PostsResult)
	if !result.Partial {
		t.Error("expected partial result")
	}
	if result.Count != 0 || len(result.Posts) != 0 || result.Posts == nil {
		t.Errorf("expected empty non-nil posts, got %v", result.Posts)
	}
	if result.Text != "I could not find any posts about that." {
		t.Errorf("text = %q", result.Text)
	}
}

func TestSearchPosts_UnusableItemsArePartial(t *testing.T) {
	tests := []struct {
		name   string
		answer string
	}{
		{"unknown field names", `[{"tweet":"Go 1.25 is out","user":"golang"}]`},
		{"truncated with nested media", `{"posts":[{"text":"a","media":[{"url":"https://pbs.twimg.com/1.jpg"}]},{"text":"b`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &stubUpstream{body: textAnswer(t, tt.answer)}
			a := New(up, staticKey("k"), Options{})

			out, err := a.SearchPosts(context.Background(), &api.SearchPostsRequest{Query: "q", Format: api.FormatJSON})
			if err != nil {
				t.Fatalf("SearchPosts() error: %v", err)
			}
			result := out.Structured.(*api.PostsResult)
			if !result.Partial {
				t.Error("expected partial result")
			}
			if result.Count != 0 || result.Posts == nil {
				t.Errorf("expected empty non-nil posts, got %v", result.Posts)
			}
			if result.Text != tt.answer {
				t.Errorf("text = %q, want the upstream answer", result.Text)
			}
		})
	}
}

func TestGetTrending_UnusableItemsArePartial(t *testing.T) {
	answer := `{"trends":[{"count":3}]}`
	up := &stubUpstream{body: textAnswer(t, answer)}
	a := New(up, staticKey("k"), Options{})

	out, err := a.GetTrending(context.Background(), &api.TrendingRequest{Format: api.FormatJSON})
	if err != nil {
		t.Fatalf("GetTrending() error: %v", err)
	}
	result := out.Structured.(*api.TrendsResult)
	if !result.Partial || result.Text != answer || result.Count != 0 {
		t.Errorf("result = %+v, want partial with upstream text", result)
	}
}

func TestSearchPosts_NoTextFallsBackToRaw(t *testing.T) {
	body := `{"id":"resp_x","output":[{"type":"x_search_call"}]}`
	up := &stubUpstream{body: body}
	a := New(up, staticKey("k"), Options{})

	out, err := a.SearchPosts(context.Background(), &api.SearchPostsRequest{Query: "q"})
	if err != nil {
		t.Fatalf("SearchPosts() error: %v", err)
	}
	if out.Text != body {
		t.Errorf("Text = %q, want raw body", out.Text)
	}
}

func TestOperations_NoUpstreamCallOnFailure(t *testing.T) {
	tests := []struct {
		name  string
		creds CredentialResolver
		opts  Options
		run   func(a *Adapter) error
		want  api.ErrorType
	}{
		{
			name:  "empty query",
			creds: staticKey("k"),
			run: func(a *Adapter) error {
				_, err := a.SearchPosts(context.Background(), &api.SearchPostsRequest{Query: "   "})
				return err
			},
			want: api.ErrorTypeValidation,
		},
		{
			name:  "inverted dates",
			creds: staticKey("k"),
			run: func(a *Adapter) error {
				_, err := a.SearchPosts(context.Background(), &api.SearchPostsRequest{
					Query: "q", FromDate: "2025-02-01", ToDate: "2025-01-01",
				})
				return err
			},
			want: api.ErrorTypeValidation,
		},
		{
			name:  "handle not allowed",
			creds: staticKey("k"),
			opts:  Options{AllowedHandles: []string{"golang"}},
			run: func(a *Adapter) error {
				_, err := a.GetUserPosts(context.Background(), &api.UserPostsRequest{Handle: "@someoneelse"})
				return err
			},
			want: api.ErrorTypeValidation,
		},
		{
			name:  "max results out of range",
			creds: staticKey("k"),
			run: func(a *Adapter) error {
				_, err := a.GetTrending(context.Background(), &api.TrendingRequest{MaxResults: intPtr(31)})
				return err
			},
			want: api.ErrorTypeValidation,
		},
		{
			name:  "missing key",
			creds: missingKey,
			run: func(a *Adapter) error {
				_, err := a.GetTrending(context.Background(), &api.TrendingRequest{})
				return err
			},
			want: api.ErrorTypeConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &stubUpstream{body: textAnswer(t, "unused")}
			err := tt.run(New(up, tt.creds, tt.opts))
			if got := errorType(t, err); got != tt.want {
				t.Errorf("type = %q, want %q", got, tt.want)
			}
			if up.calls != 0 {
				t.Errorf("expected no upstream calls, got %d", up.calls)
			}
		})
	}
}

func TestOperations_UpstreamErrorPassesThrough(t *testing.T) {
	upErr := api.NewUpstreamError(api.ErrorTypeUpstreamRateLimit, 429, "Rate limit exceeded. Please wait before retrying.", "")
	up := &stubUpstream{err: upErr}
	a := New(up, staticKey("k"), Options{})

	_, err := a.GetUserPosts(context.Background(), &api.UserPostsRequest{Handle: "golang"})
	if got := errorType(t, err); got != api.ErrorTypeUpstreamRateLimit {
		t.Errorf("type = %q", got)
	}
	if up.calls != 1 {
		t.Errorf("expected exactly 1 call, got %d", up.calls)
	}
}

func TestGetUserPosts_Request(t *testing.T) {
	up := &stubUpstream{body: textAnswer(t, "posts")}
	a := New(up, staticKey("k"), Options{
		AllowedHandles:  []string{"GoLang"},
		ExcludedHandles: []string{"spam"},
	})

	_, err := a.GetUserPosts(context.Background(), &api.UserPostsRequest{
		Handle: "@golang", Topic: "generics", FromDate: "2025-03-01",
	})
	if err != nil {
		t.Fatalf("GetUserPosts() error: %v", err)
	}

	tool := up.requests[0].Tools[0]
	if len(tool.AllowedXHandles) != 1 || tool.AllowedXHandles[0] != "golang" {
		t.Errorf("allowed handles = %v", tool.AllowedXHandles)
	}
	if len(tool.ExcludedXHandles) != 0 {
		t.Errorf("excluded handles must be empty when allowed is set: %v", tool.ExcludedXHandles)
	}
	if tool.FromDate != "2025-03-01" {
		t.Errorf("from_date = %q", tool.FromDate)
	}
	prompt := up.requests[0].Input[1].Content
	if !strings.Contains(prompt, "user @golang") || !strings.Contains(prompt, "Focus on posts related to: generics.") {
		t.Errorf("unexpected prompt:\n%s", prompt)
	}
}

func TestGetTrending(t *testing.T) {
	answer := `Here you go: {"trends":[
		{"name":"#GoLang","post_count":12500,"description":"release day"},
		{"topic":"AI","volume":"80K posts","rank":2},
		{"description":"no topic, dropped"}
	]}`
	up := &stubUpstream{body: textAnswer(t, answer)}
	a := New(up, staticKey("k"), Options{ExcludedHandles: []string{"spam"}})

	out, err := a.GetTrending(context.Background(), &api.TrendingRequest{
		Locale: "Japan", Category: "technology", Format: api.FormatJSON,
	})
	if err != nil {
		t.Fatalf("GetTrending() error: %v", err)
	}

	tool := up.requests[0].Tools[0]
	if tool.FromDate != "" || tool.ToDate != "" || len(tool.AllowedXHandles) != 0 || len(tool.ExcludedXHandles) != 0 {
		t.Errorf("trending tool must carry no scoping: %+v", tool)
	}
	prompt := up.requests[0].Input[1].Content
	if !strings.Contains(prompt, "on X (Twitter) in Japan?") || !strings.Contains(prompt, "Focus on technology topics.") {
		t.Errorf("unexpected prompt:\n%s", prompt)
	}

	result := out.Structured.(*api.TrendsResult)
	if result.Locale != "Japan" || result.Count != 2 {
		t.Fatalf("result = %+v", result)
	}
	if result.Trends[0].Topic != "#GoLang" || result.Trends[0].Rank != 1 || result.Trends[0].Volume != "12500" {
		t.Errorf("first trend = %+v", result.Trends[0])
	}
	if result.Trends[1].Rank != 2 || result.Trends[1].Volume != "80K posts" {
		t.Errorf("second trend = %+v", result.Trends[1])
	}
}

func TestGetTrending_GlobalPrompt(t *testing.T) {
	up := &stubUpstream{body: textAnswer(t, "trends")}
	a := New(up, staticKey("k"), Options{})

	out, err := a.GetTrending(context.Background(), &api.TrendingRequest{})
	if err != nil {
		t.Fatalf("GetTrending() error: %v", err)
	}
	if out.Text != "trends" {
		t.Errorf("Text = %q", out.Text)
	}
	if !strings.Contains(up.requests[0].Input[1].Content, "on X (Twitter) globally?") {
		t.Errorf("unexpected prompt: %s", up.requests[0].Input[1].Content)
	}
}
