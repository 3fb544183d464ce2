// Package places resolves free-text location queries to ranked suggestions
// with coordinates. Backends are interchangeable: a local gazetteer filter
// for in-region deployments, the same-origin suggest proxy, or Google Places.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/navidrop/taxi-site/internal/gazetteer"
	"github.com/navidrop/taxi-site/internal/geo"
)

const (
	// MinQueryLen short-circuits lookups for the first keystrokes.
	MinQueryLen = 2

	// MaxRemoteResults caps suggestions from remote backends.
	MaxRemoteResults = 6

	// DefaultDebounce is the recommended quiet period between keystrokes
	// before a lookup is issued.
	DefaultDebounce = 300 * time.Millisecond
)

// Suggestion is one resolved place candidate.
type Suggestion struct {
	DisplayName string    `json:"display_name"`
	Coord       geo.Coord `json:"coord"`
}

// Resolver turns a partial query into candidate places. Implementations
// return an empty list for queries shorter than MinQueryLen without issuing
// any lookup.
type Resolver interface {
	Resolve(ctx context.Context, query string) ([]Suggestion, error)
}

// GazetteerResolver serves suggestions from the fixed district gazetteer.
// It never fails and needs no network.
type GazetteerResolver struct{}

func (GazetteerResolver) Resolve(_ context.Context, query string) ([]Suggestion, error) {
	if len(strings.TrimSpace(query)) < MinQueryLen {
		return nil, nil
	}

	ds := gazetteer.Filter(query)
	out := make([]Suggestion, 0, len(ds))
	for _, d := range ds {
		out = append(out, Suggestion{DisplayName: d.Name, Coord: d.Coord()})
	}
	return out, nil
}

// ProxyResolver queries the same-origin location-suggest endpoint, which
// fronts the upstream geocoder and filters results to the deployment country.
type ProxyResolver struct {
	BaseURL string
	Client  *http.Client
}

func NewProxyResolver(baseURL string) *ProxyResolver {
	return &ProxyResolver{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// suggestItem matches the proxy's wire shape; lat/lon arrive as strings, the
// way the upstream geocoder emits them.
type suggestItem struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func (r *ProxyResolver) Resolve(ctx context.Context, query string) ([]Suggestion, error) {
	q := strings.TrimSpace(query)
	if len(q) < MinQueryLen {
		return nil, nil
	}

	u := r.BaseURL + "/api/location-suggest?q=" + url.QueryEscape(q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("location-suggest returned %d", resp.StatusCode)
	}

	var items []suggestItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, len(items))
	for _, it := range items {
		lat, errLat := strconv.ParseFloat(it.Lat, 64)
		lon, errLon := strconv.ParseFloat(it.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		out = append(out, Suggestion{
			DisplayName: it.DisplayName,
			Coord:       geo.Coord{Lat: lat, Lon: lon},
		})
		if len(out) == MaxRemoteResults {
			break
		}
	}
	return out, nil
}
