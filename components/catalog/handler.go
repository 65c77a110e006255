package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type catalogResponse struct {
	Data []Entry `json:"data"`
}

// NewHandler serves the section catalog as {"data": [entry, ...]}.
func NewHandler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions builds the handler from opts. Zero fields take their
// defaults.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		query := r.URL.Query()
		limit, err := strconv.Atoi(query.Get(opts.LimitParam))
		if err != nil {
			limit = 0
		}
		entries := Entries(opts.sections(), query.Get(opts.SearchParam), limit, opts)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		_ = json.NewEncoder(w).Encode(catalogResponse{Data: entries})
	})
}
