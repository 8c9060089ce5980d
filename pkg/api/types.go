package api

// Format selects the shape of a tool result.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Result cap bounds shared by every operation.
const (
	MinResults     = 1
	MaxResults     = 30
	DefaultResults = 10
)

// DateLayout is the ISO calendar date layout accepted for date windows.
const DateLayout = "2006-01-02"

// SearchPostsRequest is the input of the search_posts operation.
type SearchPostsRequest struct {
	Query      string `json:"query" jsonschema:"required,minLength=1,maxLength=500" jsonschema_description:"Search query for X posts: keywords, hashtags or natural language (e.g. 'AI news today', '#golang')."`
	FromDate   string `json:"from_date,omitempty" jsonschema:"format=date" jsonschema_description:"Only include posts on or after this date (YYYY-MM-DD)."`
	ToDate     string `json:"to_date,omitempty" jsonschema:"format=date" jsonschema_description:"Only include posts on or before this date (YYYY-MM-DD)."`
	Language   string `json:"language,omitempty" jsonschema:"maxLength=8" jsonschema_description:"Optional language filter, e.g. 'en' or 'ja'."`
	MaxResults *int   `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=30,default=10" jsonschema_description:"Maximum number of posts to return."`
	Format     Format `json:"format,omitempty" jsonschema:"enum=markdown,enum=json,default=markdown" jsonschema_description:"Output format: 'markdown' for readable text, 'json' for structured data."`
}

// UserPostsRequest is the input of the get_user_posts operation.
type UserPostsRequest struct {
	Handle     string `json:"handle" jsonschema:"required,minLength=1,maxLength=16" jsonschema_description:"X handle with or without the leading @ (e.g. 'elonmusk')."`
	Topic      string `json:"topic,omitempty" jsonschema:"maxLength=200" jsonschema_description:"Optional topic to focus on (e.g. 'AI')."`
	FromDate   string `json:"from_date,omitempty" jsonschema:"format=date" jsonschema_description:"Only include posts on or after this date (YYYY-MM-DD)."`
	ToDate     string `json:"to_date,omitempty" jsonschema:"format=date" jsonschema_description:"Only include posts on or before this date (YYYY-MM-DD)."`
	MaxResults *int   `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=30,default=10" jsonschema_description:"Maximum number of posts to return."`
	Format     Format `json:"format,omitempty" jsonschema:"enum=markdown,enum=json,default=markdown" jsonschema_description:"Output format: 'markdown' for readable text, 'json' for structured data."`
}

// TrendingRequest is the input of the get_trending operation.
type TrendingRequest struct {
	Locale     string `json:"locale,omitempty" jsonschema:"maxLength=100" jsonschema_description:"Region or locale for trends (e.g. 'Japan', 'en-US'). Empty means global."`
	Category   string `json:"category,omitempty" jsonschema:"maxLength=100" jsonschema_description:"Optional category filter (e.g. 'technology', 'sports')."`
	MaxResults *int   `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=30,default=10" jsonschema_description:"Maximum number of topics to return."`
	Format     Format `json:"format,omitempty" jsonschema:"enum=markdown,enum=json,default=markdown" jsonschema_description:"Output format: 'markdown' for readable text, 'json' for structured data."`
}

// Post is one X post extracted from an upstream answer. Only Text is
// guaranteed; every other field is present only when the answer carried it.
type Post struct {
	ID         string `json:"id,omitempty" jsonschema_description:"Numeric post ID."`
	Text       string `json:"text" jsonschema_description:"Post text or excerpt."`
	Author     string `json:"author,omitempty" jsonschema_description:"Author handle without @."`
	AuthorName string `json:"author_name,omitempty" jsonschema_description:"Author display name."`
	Timestamp  string `json:"timestamp,omitempty" jsonschema_description:"Post date/time, ISO 8601 when known."`
	URL        string `json:"url,omitempty" jsonschema_description:"Link to the post on x.com."`
	Likes      *int   `json:"likes,omitempty"`
	Reposts    *int   `json:"reposts,omitempty"`
	Replies    *int   `json:"replies,omitempty"`
}

// Trend is one trending topic. Rank is 1-based.
type Trend struct {
	Rank        int    `json:"rank"`
	Topic       string `json:"topic" jsonschema_description:"Topic or hashtag."`
	Volume      string `json:"volume,omitempty" jsonschema_description:"Post volume as reported, e.g. '12.5K posts'."`
	Description string `json:"description,omitempty" jsonschema_description:"Why the topic is trending."`
}

// PostsResult is the structured body of search_posts and get_user_posts.
type PostsResult struct {
	Query     string   `json:"query,omitempty"`
	Handle    string   `json:"handle,omitempty"`
	Count     int      `json:"count"`
	Posts     []Post   `json:"posts"`
	Citations []string `json:"citations,omitempty"`
	Partial   bool     `json:"partial,omitempty"`
	Text      string   `json:"text,omitempty"`
}

// TrendsResult is the structured body of get_trending.
type TrendsResult struct {
	Locale    string   `json:"locale,omitempty"`
	Count     int      `json:"count"`
	Trends    []Trend  `json:"trends"`
	Citations []string `json:"citations,omitempty"`
	Partial   bool     `json:"partial,omitempty"`
	Text      string   `json:"text,omitempty"`
}

// Output is what an operation hands back to the caller. Text is always
// set; Structured is set for FormatJSON and holds a *PostsResult or
// *TrendsResult.
type Output struct {
	Text       string
	Structured any
}
