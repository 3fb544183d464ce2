package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/navidrop/taxi-site/internal/geo"
	"github.com/navidrop/taxi-site/internal/http/response"
	"github.com/navidrop/taxi-site/internal/places"
	"github.com/navidrop/taxi-site/internal/platform/cache"
	"github.com/navidrop/taxi-site/pkg/logger"
)

// PlacesHandler fronts the upstream geocoder for the booking form's
// autocomplete. Browsers cannot query the geocoder directly (CORS), so the
// site proxies, filters to the deployment country, and caps the result list.
type PlacesHandler struct {
	BaseURL string // upstream geocoder, e.g. https://nominatim.openstreetmap.org
	Country string // ISO country code results are restricted to
	Client  *http.Client
	Cache   *cache.SuggestCache
}

func NewPlacesHandler(baseURL, country string, c *cache.SuggestCache) *PlacesHandler {
	return &PlacesHandler{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Country: country,
		Client:  &http.Client{Timeout: 10 * time.Second},
		Cache:   c,
	}
}

func (h *PlacesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.suggest)
	return r
}

// suggestItem is the wire shape served to the form: display name plus
// stringly lat/lon, the way the upstream geocoder emits them.
type suggestItem struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// geocoderResult is the subset of the upstream response we read.
type geocoderResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

func (h *PlacesHandler) suggest(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(q) < places.MinQueryLen {
		response.WriteJSON(w, http.StatusOK, []suggestItem{})
		return
	}

	if cached, ok := h.Cache.Get(r.Context(), q); ok {
		response.WriteJSON(w, http.StatusOK, toItems(cached))
		return
	}

	u := h.BaseURL + "/search?format=json&addressdetails=1&limit=10&countrycodes=" +
		url.QueryEscape(h.Country) + "&q=" + url.QueryEscape(q)
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, u, nil)
	if err != nil {
		response.InternalError(w, "failed to build upstream request")
		return
	}
	// Nominatim usage policy requires an identifying agent.
	req.Header.Set("User-Agent", "navidrop-taxi-site/1.0")

	resp, err := h.Client.Do(req)
	if err != nil {
		logger.ErrorContext(r.Context(), "geocoder request failed", "error", err, "query", q)
		response.BadGateway(w, "location service unavailable")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.ErrorContext(r.Context(), "geocoder returned error", "status", resp.StatusCode, "query", q)
		response.BadGateway(w, "location service unavailable")
		return
	}

	var results []geocoderResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		response.BadGateway(w, "location service returned malformed data")
		return
	}

	suggestions := make([]places.Suggestion, 0, places.MaxRemoteResults)
	for _, res := range results {
		if res.Address.Country != "India" && res.Address.CountryCode != h.Country {
			continue
		}
		lat, errLat := strconv.ParseFloat(res.Lat, 64)
		lon, errLon := strconv.ParseFloat(res.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		suggestions = append(suggestions, places.Suggestion{
			DisplayName: res.DisplayName,
			Coord:       geo.Coord{Lat: lat, Lon: lon},
		})
		if len(suggestions) == places.MaxRemoteResults {
			break
		}
	}

	h.Cache.Set(r.Context(), q, suggestions)
	response.WriteJSON(w, http.StatusOK, toItems(suggestions))
}

func toItems(suggestions []places.Suggestion) []suggestItem {
	items := make([]suggestItem, 0, len(suggestions))
	for _, s := range suggestions {
		items = append(items, suggestItem{
			DisplayName: s.DisplayName,
			Lat:         strconv.FormatFloat(s.Coord.Lat, 'f', -1, 64),
			Lon:         strconv.FormatFloat(s.Coord.Lon, 'f', -1, 64),
		})
	}
	return items
}
