// Command mock-xai runs a deterministic stand-in for the xAI Responses API.
// It answers POST /v1/responses with canned X posts or trending topics so
// xsearch can be exercised end to end without network access or an API key.
//
// The answer is chosen from the prompt: trending prompts get topics, all
// others get posts. Prompts asking for JSON get a JSON document, others get
// markdown. A query starting with "status:NNN" makes the server fail with
// that HTTP status, which is handy for checking error mapping.
//
// Configuration:
//
//	MOCK_PORT  - Listen port (default: 9090)
//	MOCK_DELAY - Artificial latency per request, e.g. "2s" (default: none)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	var delay time.Duration
	if v := os.Getenv("MOCK_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Error("invalid MOCK_DELAY", "value", v, "error", err)
			os.Exit(1)
		}
		delay = d
	}

	srv := &http.Server{Addr: ":" + port, Handler: newHandler(delay)}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock xAI starting", "port", port, "delay", delay)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock xAI failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock xAI shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

func newHandler(delay time.Duration) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/responses", func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		handleResponses(w, r)
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return mux
}

// --- Request types ---

type responsesRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`
	Tools []struct {
		Type string `json:"type"`
	} `json:"tools"`
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// --- Response types ---

type responsesResponse struct {
	ID        string       `json:"id"`
	Object    string       `json:"object"`
	CreatedAt int64        `json:"created_at"`
	Status    string       `json:"status"`
	Model     string       `json:"model"`
	Output    []outputItem `json:"output"`
	Citations []string     `json:"citations,omitempty"`
	Usage     usage        `json:"usage"`
}

type outputItem struct {
	ID      string        `json:"id"`
	Type    string        `json:"type"`
	Status  string        `json:"status"`
	Role    string        `json:"role,omitempty"`
	Content []contentPart `json:"content,omitempty"`
}

type contentPart struct {
	Type        string       `json:"type"`
	Text        string       `json:"text"`
	Annotations []annotation `json:"annotations"`
}

type annotation struct {
	Type  string `json:"type"`
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// --- Canned data ---

type post struct {
	Author    string `json:"author"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	Likes     int    `json:"likes"`
	Reposts   int    `json:"reposts"`
	Replies   int    `json:"replies"`
	URL       string `json:"url"`
}

type trend struct {
	Rank      int    `json:"rank"`
	Topic     string `json:"topic"`
	PostCount int    `json:"post_count"`
	Context   string `json:"context"`
}

var cannedPosts = []post{
	{Author: "golang", Text: "Go 1.25 is released with container-aware GOMAXPROCS.", Timestamp: "2025-08-12T17:00:00Z", Likes: 5120, Reposts: 1480, Replies: 211, URL: "https://x.com/golang/status/1955300000000000001"},
	{Author: "xai", Text: "x_search is now available in the Responses API.", Timestamp: "2025-08-10T09:30:00Z", Likes: 8800, Reposts: 2100, Replies: 640, URL: "https://x.com/xai/status/1955300000000000002"},
	{Author: "modelcontextprotocol", Text: "The Go SDK for MCP reached v1.", Timestamp: "2025-08-05T15:12:00Z", Likes: 2300, Reposts: 510, Replies: 87, URL: "https://x.com/modelcontextprotocol/status/1955300000000000003"},
	{Author: "gophercon", Text: "Talk recordings are online.", Timestamp: "2025-08-01T12:00:00Z", Likes: 940, Reposts: 120, Replies: 33, URL: "https://x.com/gophercon/status/1955300000000000004"},
}

var cannedTrends = []trend{
	{Rank: 1, Topic: "#GoLang", PostCount: 48200, Context: "Go release discussion"},
	{Rank: 2, Topic: "MCP", PostCount: 31000, Context: "Model Context Protocol servers"},
	{Rank: 3, Topic: "Grok", PostCount: 27500, Context: "New model announcements"},
	{Rank: 4, Topic: "#OpenSource", PostCount: 12100, Context: "Community projects"},
}

var (
	statusPattern = regexp.MustCompile(`(?m)(?:about|related to): status:(\d{3})`)
	limitPattern  = regexp.MustCompile(`(?:Return up to|List the top) (\d+)`)
	handlePattern = regexp.MustCompile(`user @([A-Za-z0-9_]+)`)
)

// --- Handler ---

func handleResponses(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req responsesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prompt := userPrompt(req.Input)
	if m := statusPattern.FindStringSubmatch(prompt); m != nil {
		status, _ := strconv.Atoi(m[1])
		writeError(w, status, fmt.Sprintf("forced status %d", status))
		return
	}

	limit := 10
	if m := limitPattern.FindStringSubmatch(prompt); m != nil {
		limit, _ = strconv.Atoi(m[1])
	}
	wantJSON := strings.Contains(prompt, "JSON")

	var text string
	var citations []string
	if strings.Contains(prompt, "trending") {
		text = renderTrends(capped(cannedTrends, limit), wantJSON)
	} else {
		posts := cannedPosts
		if m := handlePattern.FindStringSubmatch(prompt); m != nil {
			posts = postsBy(m[1])
		}
		posts = capped(posts, limit)
		text = renderPosts(posts, wantJSON)
		for _, p := range posts {
			citations = append(citations, p.URL)
		}
	}

	resp := responsesResponse{
		ID:        "resp_" + uuid.NewString(),
		Object:    "response",
		CreatedAt: time.Now().Unix(),
		Status:    "completed",
		Model:     req.Model,
		Output: []outputItem{
			{ID: "xs_" + uuid.NewString(), Type: "custom_tool_call", Status: "completed"},
			{
				ID:     "msg_" + uuid.NewString(),
				Type:   "message",
				Status: "completed",
				Role:   "assistant",
				Content: []contentPart{{
					Type:        "output_text",
					Text:        text,
					Annotations: citationAnnotations(citations),
				}},
			},
		},
		Citations: citations,
		Usage: usage{
			InputTokens:  len(prompt) / 4,
			OutputTokens: len(text) / 4,
			TotalTokens:  (len(prompt) + len(text)) / 4,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func userPrompt(input []inputMessage) string {
	for i := len(input) - 1; i >= 0; i-- {
		if input[i].Role == "user" {
			return input[i].Content
		}
	}
	return ""
}

func postsBy(handle string) []post {
	posts := make([]post, 0, len(cannedPosts))
	for _, p := range cannedPosts {
		p.Author = handle
		p.URL = strings.Replace(p.URL, "/"+strings.Split(strings.TrimPrefix(p.URL, "https://x.com/"), "/")[0]+"/", "/"+handle+"/", 1)
		posts = append(posts, p)
	}
	return posts
}

func capped[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func renderPosts(posts []post, asJSON bool) string {
	if asJSON {
		data, _ := json.MarshalIndent(map[string]any{"posts": posts}, "", "  ")
		return string(data)
	}
	var b strings.Builder
	for i, p := range posts {
		fmt.Fprintf(&b, "%d. **@%s** (%s)\n   %s\n   %d likes, %d reposts, %d replies\n   %s\n\n",
			i+1, p.Author, p.Timestamp, p.Text, p.Likes, p.Reposts, p.Replies, p.URL)
	}
	return strings.TrimSpace(b.String())
}

func renderTrends(trends []trend, asJSON bool) string {
	if asJSON {
		data, _ := json.MarshalIndent(map[string]any{"trends": trends}, "", "  ")
		return string(data)
	}
	var b strings.Builder
	for _, t := range trends {
		fmt.Fprintf(&b, "%d. **%s** (%d posts): %s\n", t.Rank, t.Topic, t.PostCount, t.Context)
	}
	return strings.TrimSpace(b.String())
}

func citationAnnotations(urls []string) []annotation {
	out := make([]annotation, 0, len(urls))
	for _, u := range urls {
		out = append(out, annotation{Type: "url_citation", URL: u})
	}
	return out
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"message": message, "type": "mock_error"},
	})
}
