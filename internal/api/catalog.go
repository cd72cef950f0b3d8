package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/huenthong/spacifychat/internal/catalog"
)

type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

func (h *CatalogHandler) Areas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"areas": catalog.Areas()})
}

func (h *CatalogHandler) Properties(w http.ResponseWriter, r *http.Request) {
	// chi leaves URL params escaped, and area names contain spaces.
	raw, err := url.PathUnescape(chi.URLParam(r, "area"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid area"})
		return
	}

	area, ok := catalog.Lookup(raw)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown area"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"area":       area,
		"properties": catalog.Properties(area),
	})
}
