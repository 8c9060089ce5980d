package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/rhuss/xsearch/pkg/api"
	"github.com/rhuss/xsearch/pkg/xai"
)

var (
	statusURLPattern = regexp.MustCompile(`https?://(?:www\.)?(?:x|twitter)\.com/([A-Za-z0-9_]{1,15})/status/(\d+)`)
	fencePattern     = regexp.MustCompile("(?s)^```[A-Za-z]*\\s*\\n?(.*?)\\n?```$")
)

// Field aliases accepted when decoding model answers.
var (
	postListKeys    = []string{"posts", "results", "items", "data", "tweets"}
	trendListKeys   = []string{"trends", "topics", "results", "items", "data"}
	textKeys        = []string{"text", "content", "body", "post_text"}
	authorKeys      = []string{"author", "username", "handle", "user", "screen_name"}
	authorNameKeys  = []string{"author_name", "display_name", "name"}
	timestampKeys   = []string{"timestamp", "created_at", "date", "time", "datetime"}
	urlKeys         = []string{"url", "link", "post_url"}
	idKeys          = []string{"id", "post_id", "tweet_id"}
	likesKeys       = []string{"likes", "like_count", "favorites"}
	repostsKeys     = []string{"reposts", "retweets", "repost_count", "retweet_count"}
	repliesKeys     = []string{"replies", "reply_count"}
	topicKeys       = []string{"topic", "name", "title", "hashtag", "trend"}
	volumeKeys      = []string{"volume", "post_count", "posts", "tweet_volume"}
	descriptionKeys = []string{"description", "context", "reason", "summary"}
)

// cleanText trims s, replaces invalid UTF-8 and normalizes to NFC.
func cleanText(s string) string {
	return norm.NFC.String(strings.ToValidUTF8(strings.TrimSpace(s), "�"))
}

// answerText returns the cleaned output text of resp, or the raw response
// body when the answer carries no text at all.
func answerText(resp *xai.Response) string {
	if text := cleanText(resp.OutputText()); text != "" {
		return text
	}
	return cleanText(string(resp.Raw()))
}

// findItems scans text for JSON values holding a list of items, tolerating
// markdown fences and surrounding prose. A bare array or an object carrying
// the list under one of keys is a candidate. Each candidate is handed to
// accept in order; scanning stops at the first one accept takes.
func findItems(text string, keys []string, accept func([]map[string]any) bool) bool {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	for offset := 0; offset < len(text); {
		i := strings.IndexAny(text[offset:], "[{")
		if i < 0 {
			break
		}
		start := offset + i
		offset = start + 1

		dec := json.NewDecoder(strings.NewReader(text[start:]))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			continue
		}
		if items, ok := itemList(v, keys); ok && accept(items) {
			return true
		}
	}
	return false
}

// itemList extracts the object items of a decoded value. Arrays must hold
// at least one object unless empty.
func itemList(v any, keys []string) ([]map[string]any, bool) {
	var raw []any
	switch t := v.(type) {
	case []any:
		raw = t
	case map[string]any:
		found := false
		for _, k := range keys {
			if list, ok := t[k].([]any); ok {
				raw, found = list, true
				break
			}
		}
		if !found {
			return nil, false
		}
	default:
		return nil, false
	}

	items := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]any); ok {
			items = append(items, m)
		}
	}
	if len(raw) > 0 && len(items) == 0 {
		return nil, false
	}
	return items, true
}

// collect converts items with convert, keeping at most limit. A non-empty
// list that yields nothing is rejected so scanning can go on.
func collect[T any](items []map[string]any, limit int, convert func(map[string]any) (T, bool)) ([]T, bool) {
	out := []T{}
	for _, m := range items {
		if len(out) >= limit {
			break
		}
		if v, keep := convert(m); keep {
			out = append(out, v)
		}
	}
	if len(items) > 0 && len(out) == 0 {
		return nil, false
	}
	return out, true
}

// parsePosts extracts at most limit posts from a model answer. ok is false
// when the answer holds no list of recognizable posts.
func parsePosts(text string, limit int) (posts []api.Post, ok bool) {
	ok = findItems(text, postListKeys, func(items []map[string]any) bool {
		var accepted bool
		posts, accepted = collect(items, limit, toPost)
		return accepted
	})
	if !ok {
		return nil, false
	}
	return posts, true
}

func toPost(m map[string]any) (api.Post, bool) {
	p := api.Post{
		ID:         stringField(m, idKeys),
		Text:       cleanText(stringField(m, textKeys)),
		Author:     strings.TrimPrefix(stringField(m, authorKeys), "@"),
		AuthorName: stringField(m, authorNameKeys),
		Timestamp:  stringField(m, timestampKeys),
		URL:        stringField(m, urlKeys),
		Likes:      intField(m, likesKeys),
		Reposts:    intField(m, repostsKeys),
		Replies:    intField(m, repliesKeys),
	}
	if p.Text == "" {
		return p, false
	}

	if match := statusURLPattern.FindStringSubmatch(p.URL); match != nil {
		if p.ID == "" {
			p.ID = match[2]
		}
		if p.Author == "" {
			p.Author = match[1]
		}
	}
	if p.URL == "" && p.ID != "" && p.Author != "" {
		p.URL = fmt.Sprintf("https://x.com/%s/status/%s", p.Author, p.ID)
	}
	return p, true
}

// parseTrends extracts at most limit trends from a model answer. Ranks
// default to list position.
func parseTrends(text string, limit int) (trends []api.Trend, ok bool) {
	ok = findItems(text, trendListKeys, func(items []map[string]any) bool {
		var accepted bool
		trends, accepted = collect(items, limit, toTrend)
		return accepted
	})
	if !ok {
		return nil, false
	}
	for i := range trends {
		if trends[i].Rank <= 0 {
			trends[i].Rank = i + 1
		}
	}
	return trends, true
}

func toTrend(m map[string]any) (api.Trend, bool) {
	tr := api.Trend{
		Topic:       cleanText(stringField(m, topicKeys)),
		Volume:      stringField(m, volumeKeys),
		Description: cleanText(stringField(m, descriptionKeys)),
	}
	if tr.Topic == "" {
		return tr, false
	}
	if rank := intField(m, []string{"rank", "position"}); rank != nil && *rank > 0 {
		tr.Rank = *rank
	}
	return tr, true
}

// stringField returns the first non-empty string or number under keys.
func stringField(m map[string]any, keys []string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// intField returns the first integer under keys. Numeric strings such as
// "1,204" are accepted; abbreviated counts like "1.2K" are not.
func intField(m map[string]any, keys []string) *int {
	for _, k := range keys {
		var s string
		switch v := m[k].(type) {
		case json.Number:
			s = v.String()
		case string:
			s = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		default:
			continue
		}
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return &n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f == float64(int(f)) {
			n := int(f)
			return &n
		}
	}
	return nil
}

// marshalResult renders a structured result as indented JSON text.
func marshalResult(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
