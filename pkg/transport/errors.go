package transport

import (
	"encoding/json"
	"net/http"

	"github.com/rhuss/xsearch/pkg/api"
)

// WriteError writes the JSON error envelope of apiErr with the given
// status code.
func WriteError(w http.ResponseWriter, statusCode int, apiErr *api.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErr.Envelope())
}
