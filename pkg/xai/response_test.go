package xai

import (
	"encoding/json"
	"reflect"
	"testing"
)

func decodeResponse(t *testing.T, body string) *Response {
	t.Helper()
	var r Response
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &r
}

func TestOutputText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "single message",
			body: `{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"hello"}]}]}`,
			want: "hello",
		},
		{
			name: "multiple parts joined",
			body: `{"output":[
				{"type":"x_search_call","status":"completed"},
				{"type":"message","content":[{"type":"output_text","text":"one"},{"type":"refusal","text":"skip"},{"type":"output_text","text":"two"}]},
				{"type":"message","content":[{"type":"output_text","text":"three"}]}
			]}`,
			want: "one\ntwo\nthree",
		},
		{
			name: "direct text item",
			body: `{"output":[{"type":"text","text":"direct"}]}`,
			want: "direct",
		},
		{
			name: "string content",
			body: `{"output":[{"type":"message","content":"plain"}]}`,
			want: "plain",
		},
		{
			name: "no text",
			body: `{"output":[{"type":"x_search_call"}]}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeResponse(t, tt.body).OutputText(); got != tt.want {
				t.Errorf("OutputText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCitations(t *testing.T) {
	r := decodeResponse(t, `{
		"citations": ["https://x.com/a/status/1", "https://x.com/b/status/2"],
		"output": [{"type":"message","content":[{"type":"output_text","text":"t","annotations":[
			{"type":"url_citation","url":"https://x.com/b/status/2"},
			{"type":"url_citation","url":"https://x.com/c/status/3"},
			{"type":"file_citation","url":"ignored"}
		]}]}]
	}`)

	want := []string{"https://x.com/a/status/1", "https://x.com/b/status/2", "https://x.com/c/status/3"}
	if got := r.Citations(); !reflect.DeepEqual(got, want) {
		t.Errorf("Citations() = %v, want %v", got, want)
	}
}
