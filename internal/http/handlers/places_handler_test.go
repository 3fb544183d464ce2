package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/navidrop/taxi-site/internal/http/handlers"
)

type suggestItem struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func upstreamBody() string {
	results := `[
		{"display_name": "Chennai, Tamil Nadu, India", "lat": "13.0827", "lon": "80.2707", "address": {"country": "India", "country_code": "in"}},
		{"display_name": "Chennai Street, Colombo, Sri Lanka", "lat": "6.9271", "lon": "79.8612", "address": {"country": "Sri Lanka", "country_code": "lk"}},
		{"display_name": "Broken Coords", "lat": "not-a-number", "lon": "80.1", "address": {"country": "India", "country_code": "in"}}`
	for i := 0; i < 7; i++ {
		results += fmt.Sprintf(`,
		{"display_name": "Place %d, Tamil Nadu, India", "lat": "12.%d", "lon": "79.%d", "address": {"country": "India", "country_code": "in"}}`, i, i, i)
	}
	return results + "]"
}

func TestSuggestFiltersAndCaps(t *testing.T) {
	var gotQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		if r.Header.Get("User-Agent") == "" {
			t.Error("upstream request missing User-Agent")
		}
		if r.URL.Query().Get("countrycodes") != "in" {
			t.Errorf("countrycodes = %q", r.URL.Query().Get("countrycodes"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(upstreamBody()))
	}))
	defer upstream.Close()

	h := handlers.NewPlacesHandler(upstream.URL, "in", nil)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/?q=chennai")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if gotQuery != "chennai" {
		t.Errorf("upstream query = %q", gotQuery)
	}

	var items []suggestItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 6 {
		t.Fatalf("got %d suggestions, want capped at 6", len(items))
	}
	if items[0].DisplayName != "Chennai, Tamil Nadu, India" || items[0].Lat != "13.0827" {
		t.Errorf("first suggestion = %+v", items[0])
	}
	for _, it := range items {
		if it.DisplayName == "Chennai Street, Colombo, Sri Lanka" {
			t.Error("foreign result survived the country filter")
		}
		if it.DisplayName == "Broken Coords" {
			t.Error("unparsable coordinates survived")
		}
	}
}

func TestSuggestShortQuerySkipsUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream contacted for short query")
	}))
	defer upstream.Close()

	h := handlers.NewPlacesHandler(upstream.URL, "in", nil)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	for _, q := range []string{"", "c", "  c  "} {
		resp, err := http.Get(srv.URL + "/?q=" + url.QueryEscape(q))
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		var items []suggestItem
		if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
			t.Fatalf("decode: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || len(items) != 0 {
			t.Errorf("q=%q: status %d, %d items; want empty 200", q, resp.StatusCode, len(items))
		}
	}
}

func TestSuggestUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	h := handlers.NewPlacesHandler(upstream.URL, "in", nil)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/?q=chennai")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}
