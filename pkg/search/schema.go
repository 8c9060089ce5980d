package search

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/rhuss/xsearch/pkg/api"
)

// postsAnswer and trendsAnswer describe the JSON the model is asked to
// produce when structured outputs are enabled.
type postsAnswer struct {
	Posts []api.Post `json:"posts"`
}

type trendsAnswer struct {
	Trends []api.Trend `json:"trends"`
}

var (
	postsSchema  = sync.OnceValue(func() json.RawMessage { return reflectSchema(&postsAnswer{}) })
	trendsSchema = sync.OnceValue(func() json.RawMessage { return reflectSchema(&trendsAnswer{}) })
)

func reflectSchema(v any) json.RawMessage {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
		Anonymous:      true,
	}
	s := r.Reflect(v)
	s.Version = ""
	data, err := json.Marshal(s)
	if err != nil {
		// Reflected schemas of static types always marshal.
		panic(err)
	}
	return data
}
