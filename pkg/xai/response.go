package xai

import (
	"encoding/json"
	"strings"
)

// ParseResponse decodes a Responses API body and keeps the raw bytes.
func ParseResponse(data []byte) (*Response, error) {
	var r Response
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	r.raw = data
	return &r, nil
}

// OutputText joins the text of every output_text part of every message
// item, plus text carried directly on output items, separated by "\n".
func (r *Response) OutputText() string {
	var parts []string
	for _, item := range r.Output {
		if item.Type == "message" {
			for _, p := range item.parts() {
				if p.Type == "output_text" && p.Text != "" {
					parts = append(parts, p.Text)
				}
			}
			continue
		}
		if item.Text != "" {
			parts = append(parts, item.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Citations merges the top-level citation list with url_citation
// annotations, preserving first-seen order without duplicates.
func (r *Response) Citations() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		out = append(out, u)
	}
	for _, c := range r.CitationURLs {
		add(c)
	}
	for _, item := range r.Output {
		for _, p := range item.parts() {
			for _, a := range p.Annotations {
				if a.Type == "url_citation" {
					add(a.URL)
				}
			}
		}
	}
	return out
}

// Raw returns the response body exactly as received.
func (r *Response) Raw() []byte {
	return r.raw
}

// parts decodes the content parts of a message item. Content may be an
// array of parts or a bare string.
func (item OutputItem) parts() []ContentPart {
	if len(item.Content) == 0 {
		return nil
	}
	var parts []ContentPart
	if err := json.Unmarshal(item.Content, &parts); err == nil {
		return parts
	}
	var s string
	if err := json.Unmarshal(item.Content, &s); err == nil && s != "" {
		return []ContentPart{{Type: "output_text", Text: s}}
	}
	return nil
}
