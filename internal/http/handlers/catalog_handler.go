package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/navidrop/taxi-site/internal/fleet"
	"github.com/navidrop/taxi-site/internal/gazetteer"
	"github.com/navidrop/taxi-site/internal/http/response"
)

// CatalogHandler serves the static reference data the form renders from:
// vehicle classes with rates and the district gazetteer.
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

func (h *CatalogHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/vehicles", h.vehicles)
	r.Get("/districts", h.districts)
	return r
}

func (h *CatalogHandler) vehicles(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, fleet.Catalog)
}

func (h *CatalogHandler) districts(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, gazetteer.Districts)
}
