package theme

import (
	"encoding/json"
	"net/http"
)

// ColorSource provides the color tokens currently in effect.
type ColorSource interface {
	Colors() map[string]string
}

// ColorSourceFunc adapts a function to ColorSource.
type ColorSourceFunc func() map[string]string

func (f ColorSourceFunc) Colors() map[string]string {
	return f()
}

// Handler handles palette-related HTTP requests.
type Handler struct {
	source ColorSource
}

// NewHandler creates a new palette handler.
func NewHandler(source ColorSource) *Handler {
	return &Handler{
		source: source,
	}
}

// HandleColors serves the palette as JSON. With ?token=name a single entry is
// returned; with ?group=family entries are grouped by family.
func (h *Handler) HandleColors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	palette := NewPalette(h.source.Colors())
	q := r.URL.Query()

	var body any
	switch {
	case q.Get("token") != "":
		entry, ok := palette.Lookup(q.Get("token"))
		if !ok {
			http.Error(w, "token not found", http.StatusNotFound)
			return
		}
		body = entry
	case q.Get("group") == "family":
		body = palette.Families()
	case q.Get("group") != "":
		http.Error(w, "unsupported group", http.StatusBadRequest)
		return
	default:
		body = palette.Entries()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "failed to encode palette", http.StatusInternalServerError)
		return
	}
}
