package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	qs "github.com/google/go-querystring/query"
	"github.com/rs/zerolog/log"

	"jobboard/internal/domain"
)

const DefaultMapQuestURL = "https://www.mapquestapi.com/geocoding/v1/address"

// MapQuest resolves addresses through the MapQuest geocoding API.
type MapQuest struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewMapQuest(apiKey, baseURL string, timeout time.Duration) *MapQuest {
	if baseURL == "" {
		baseURL = DefaultMapQuestURL
	}
	return &MapQuest{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type mapQuestParams struct {
	Key        string `url:"key"`
	Location   string `url:"location"`
	MaxResults int    `url:"maxResults,omitempty"`
	ThumbMaps  bool   `url:"thumbMaps"`
}

type mapQuestResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []mapQuestLocation `json:"locations"`
	} `json:"results"`
}

type mapQuestLocation struct {
	Street         string `json:"street"`
	AdminArea5     string `json:"adminArea5"` // city
	AdminArea3     string `json:"adminArea3"` // state
	AdminArea1     string `json:"adminArea1"` // country
	PostalCode     string `json:"postalCode"`
	GeocodeQuality string `json:"geocodeQuality"`
	LatLng         struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"latLng"`
}

func (m *MapQuest) Geocode(ctx context.Context, address string) ([]domain.GeoPoint, error) {
	values, err := qs.Values(mapQuestParams{Key: m.apiKey, Location: address, MaxResults: 5})
	if err != nil {
		return nil, fmt.Errorf("failed to encode geocoder query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoder request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoder request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocoder returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload mapQuestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geocoder response: %w", err)
	}
	if payload.Info.StatusCode != 0 {
		return nil, fmt.Errorf("geocoder status %d: %s", payload.Info.StatusCode, strings.Join(payload.Info.Messages, "; "))
	}

	points := make([]domain.GeoPoint, 0)
	for _, result := range payload.Results {
		for _, loc := range result.Locations {
			// country centroids are what MapQuest answers for unknown input
			if loc.GeocodeQuality == "COUNTRY" {
				continue
			}
			points = append(points, domain.GeoPoint{
				Latitude:         loc.LatLng.Lat,
				Longitude:        loc.LatLng.Lng,
				FormattedAddress: formatAddress(loc),
				City:             loc.AdminArea5,
				StateCode:        loc.AdminArea3,
				Zipcode:          loc.PostalCode,
				CountryCode:      loc.AdminArea1,
			})
		}
	}

	log.Debug().Str("address", address).Int("candidates", len(points)).Msg("geocoded address")
	return points, nil
}

func formatAddress(loc mapQuestLocation) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{loc.Street, loc.AdminArea5, strings.TrimSpace(loc.AdminArea3 + " " + loc.PostalCode), loc.AdminArea1} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
