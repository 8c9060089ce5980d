package xai

import "encoding/json"

// --- Request types ---

// Request is the wire format for POST /v1/responses.
type Request struct {
	Model       string         `json:"model"`
	Input       []InputMessage `json:"input"`
	Tools       []Tool         `json:"tools,omitempty"`
	Temperature *float64       `json:"temperature,omitempty"`
	Store       bool           `json:"store"`

	// Text carries an optional structured output constraint.
	Text *TextConfig `json:"text,omitempty"`
}

// InputMessage is one role-tagged message of the request input.
type InputMessage struct {
	Role    string `json:"role"` // "system", "user"
	Content string `json:"content"`
}

// Tool is a server-side tool definition. Only x_search is used.
type Tool struct {
	Type             string   `json:"type"`
	FromDate         string   `json:"from_date,omitempty"`
	ToDate           string   `json:"to_date,omitempty"`
	AllowedXHandles  []string `json:"allowed_x_handles,omitempty"`
	ExcludedXHandles []string `json:"excluded_x_handles,omitempty"`
}

// ToolTypeXSearch is the type of the X search tool.
const ToolTypeXSearch = "x_search"

// TextConfig carries the text output format constraint.
type TextConfig struct {
	Format TextFormat `json:"format"`
}

// TextFormat requests JSON output matching Schema.
type TextFormat struct {
	Type   string          `json:"type"` // "json_schema"
	Name   string          `json:"name,omitempty"`
	Schema json.RawMessage `json:"schema,omitempty"`
	Strict bool            `json:"strict,omitempty"`
}

// --- Response types ---

// Response is the wire format returned by POST /v1/responses.
type Response struct {
	ID           string       `json:"id"`
	Object       string       `json:"object,omitempty"`
	CreatedAt    int64        `json:"created_at,omitempty"`
	Status       string       `json:"status,omitempty"`
	Model        string       `json:"model,omitempty"`
	Output       []OutputItem `json:"output"`
	CitationURLs []string     `json:"citations,omitempty"`
	Usage        *Usage       `json:"usage,omitempty"`

	raw []byte
}

// OutputItem is one item of the response output (message, x_search_call, ...).
type OutputItem struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Status  string          `json:"status,omitempty"`
	Role    string          `json:"role,omitempty"`
	Content json.RawMessage `json:"content,omitempty"` // array of content parts for messages
	Text    string          `json:"text,omitempty"`
}

// ContentPart is a content part within a message item.
type ContentPart struct {
	Type        string       `json:"type"` // "output_text"
	Text        string       `json:"text,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Annotation is a citation attached to output text.
type Annotation struct {
	Type  string `json:"type"` // "url_citation"
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
}

// Usage holds token usage reported by the API.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// errorResponse is the error body format of the xAI API. Both
// {"error":{"message":...}} and {"error":"...","code":...} occur.
type errorResponse struct {
	Error   json.RawMessage `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Code    any             `json:"code,omitempty"`
}

type errorObject struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}
