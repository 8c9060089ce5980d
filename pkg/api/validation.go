package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxQueryLength    = 500
	maxTopicLength    = 200
	maxLocaleLength   = 100
	maxCategoryLength = 100
)

var (
	handlePattern   = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)
	languagePattern = regexp.MustCompile(`^[A-Za-z]{2,3}(-[A-Za-z0-9]{2,4})?$`)
)

// Decode strictly decodes raw tool arguments into v. Unknown fields, type
// mismatches and trailing data are reported as validation errors. Empty
// input decodes as an empty object.
func Decode(raw []byte, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return decodeError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return NewValidationError("", "arguments must be a single JSON object")
	}
	return checkExactKeys(raw, v)
}

// checkExactKeys rejects keys that encoding/json matched to a field only
// case-insensitively. Object keys must equal a json tag exactly.
func checkExactKeys(raw []byte, v any) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	known := jsonFieldNames(v)
	for key := range obj {
		if !known[key] {
			return NewValidationError(key, fmt.Sprintf("unknown field %q", key))
		}
	}
	return nil
}

// jsonFieldNames returns the json names of the fields of the struct v points to.
func jsonFieldNames(v any) map[string]bool {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	names := make(map[string]bool)
	if t.Kind() != reflect.Struct {
		return names
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		names[name] = true
	}
	return names
}

func decodeError(err error) *Error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		return NewValidationError(typeErr.Field,
			fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.String())).WithCause(err)
	case errors.As(err, &syntaxErr):
		return NewValidationError("", fmt.Sprintf("arguments are not valid JSON: %s", syntaxErr.Error())).WithCause(err)
	}

	// encoding/json reports unknown fields as `json: unknown field "name"`.
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		field = strings.Trim(field, `"`)
		return NewValidationError(field, fmt.Sprintf("unknown field %q", field)).WithCause(err)
	}
	return NewValidationError("", fmt.Sprintf("invalid arguments: %s", err.Error())).WithCause(err)
}

// Validate normalizes r in place and checks every constraint. It returns
// an *Error describing the first violation, or nil.
func (r *SearchPostsRequest) Validate() *Error {
	r.Query = strings.TrimSpace(r.Query)
	r.Language = strings.TrimSpace(r.Language)

	if r.Query == "" {
		return NewValidationError("query", "query is required")
	}
	if utf8.RuneCountInString(r.Query) > maxQueryLength {
		return NewValidationError("query", fmt.Sprintf("query must be at most %d characters", maxQueryLength))
	}
	if r.Language != "" && !languagePattern.MatchString(r.Language) {
		return NewValidationError("language", "language must be a language code such as 'en' or 'pt-BR'")
	}
	if err := validateDateWindow(&r.FromDate, &r.ToDate); err != nil {
		return err
	}
	if err := validateMaxResults(&r.MaxResults); err != nil {
		return err
	}
	return validateFormat(&r.Format)
}

// Validate normalizes r in place and checks every constraint. The leading
// @ of the handle is stripped. A non-empty allowed list restricts the
// accepted handles (case-insensitive).
func (r *UserPostsRequest) Validate(allowed []string) *Error {
	r.Handle = strings.TrimPrefix(strings.TrimSpace(r.Handle), "@")
	r.Topic = strings.TrimSpace(r.Topic)

	if r.Handle == "" {
		return NewValidationError("handle", "handle is required")
	}
	if !handlePattern.MatchString(r.Handle) {
		return NewValidationError("handle", "handle must be 1-15 letters, digits or underscores")
	}
	if len(allowed) > 0 && !containsFold(allowed, r.Handle) {
		return NewValidationError("handle", fmt.Sprintf("handle %q is not in the configured allow-list", r.Handle))
	}
	if utf8.RuneCountInString(r.Topic) > maxTopicLength {
		return NewValidationError("topic", fmt.Sprintf("topic must be at most %d characters", maxTopicLength))
	}
	if err := validateDateWindow(&r.FromDate, &r.ToDate); err != nil {
		return err
	}
	if err := validateMaxResults(&r.MaxResults); err != nil {
		return err
	}
	return validateFormat(&r.Format)
}

// Validate normalizes r in place and checks every constraint.
func (r *TrendingRequest) Validate() *Error {
	r.Locale = strings.TrimSpace(r.Locale)
	r.Category = strings.TrimSpace(r.Category)

	if utf8.RuneCountInString(r.Locale) > maxLocaleLength {
		return NewValidationError("locale", fmt.Sprintf("locale must be at most %d characters", maxLocaleLength))
	}
	if utf8.RuneCountInString(r.Category) > maxCategoryLength {
		return NewValidationError("category", fmt.Sprintf("category must be at most %d characters", maxCategoryLength))
	}
	if err := validateMaxResults(&r.MaxResults); err != nil {
		return err
	}
	return validateFormat(&r.Format)
}

// Limit returns the effective result cap of a validated request.
func Limit(maxResults *int) int {
	if maxResults == nil {
		return DefaultResults
	}
	return *maxResults
}

func validateMaxResults(n **int) *Error {
	if *n == nil {
		v := DefaultResults
		*n = &v
		return nil
	}
	if **n < MinResults || **n > MaxResults {
		return NewValidationError("max_results",
			fmt.Sprintf("max_results must be between %d and %d, got %d", MinResults, MaxResults, **n))
	}
	return nil
}

func validateFormat(f *Format) *Error {
	*f = Format(strings.ToLower(strings.TrimSpace(string(*f))))
	switch *f {
	case "":
		*f = FormatMarkdown
	case FormatMarkdown, FormatJSON:
	default:
		return NewValidationError("format", fmt.Sprintf("format must be %q or %q, got %q", FormatMarkdown, FormatJSON, *f))
	}
	return nil
}

func validateDateWindow(from, to *string) *Error {
	*from = strings.TrimSpace(*from)
	*to = strings.TrimSpace(*to)

	var fromTime, toTime time.Time
	var err error
	if *from != "" {
		if fromTime, err = time.Parse(DateLayout, *from); err != nil {
			return NewValidationError("from_date", fmt.Sprintf("from_date must be a date in YYYY-MM-DD format, got %q", *from))
		}
	}
	if *to != "" {
		if toTime, err = time.Parse(DateLayout, *to); err != nil {
			return NewValidationError("to_date", fmt.Sprintf("to_date must be a date in YYYY-MM-DD format, got %q", *to))
		}
	}
	if *from != "" && *to != "" && fromTime.After(toTime) {
		return NewValidationError("from_date", fmt.Sprintf("from_date %s is after to_date %s", *from, *to))
	}
	return nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimPrefix(strings.TrimSpace(v), "@"), s) {
			return true
		}
	}
	return false
}
