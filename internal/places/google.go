package places

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"github.com/navidrop/taxi-site/internal/geo"
)

// GoogleResolver resolves queries through the Google Places Text Search API,
// biased to India. Alternative remote backend for deployments with an API key.
type GoogleResolver struct {
	client *maps.Client
}

func NewGoogleResolver(apiKey string) (*GoogleResolver, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleResolver{client: client}, nil
}

func (g *GoogleResolver) Resolve(ctx context.Context, query string) ([]Suggestion, error) {
	q := strings.TrimSpace(query)
	if len(q) < MinQueryLen {
		return nil, nil
	}

	resp, err := g.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:  q,
		Region: "in",
	})
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	out := make([]Suggestion, 0, MaxRemoteResults)
	for _, r := range resp.Results {
		name := r.FormattedAddress
		if name == "" {
			name = r.Name
		}
		out = append(out, Suggestion{
			DisplayName: name,
			Coord: geo.Coord{
				Lat: r.Geometry.Location.Lat,
				Lon: r.Geometry.Location.Lng,
			},
		})
		if len(out) == MaxRemoteResults {
			break
		}
	}
	return out, nil
}
