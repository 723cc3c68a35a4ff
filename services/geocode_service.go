package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/Rdailuo/CafeMap/models"
	"github.com/Rdailuo/CafeMap/utils/errors"
	"github.com/redis/go-redis/v9"
)

const defaultNominatimURL = "https://nominatim.openstreetmap.org/search"

const userAgent = "CafeMap/1.0"

// geocodeCacheTTL bounds how long a postal-code resolution is reused before
// hitting the upstream again.
const geocodeCacheTTL = 24 * time.Hour

// Geocoder resolves free-text postal codes to coordinates. The contract is
// "first candidate's coordinate, if any, else failure".
type Geocoder interface {
	Resolve(ctx context.Context, postalCode string) (models.GeoPoint, error)
}

// GeocodeService resolves postal codes against the OpenStreetMap Nominatim
// search API, with a Redis cache in front of it.
type GeocodeService struct {
	baseURL     string
	client      *http.Client
	redisClient *redis.Client
}

func NewGeocodeService(redisClient *redis.Client) *GeocodeService {
	baseURL := os.Getenv("NOMINATIM_URL")
	if baseURL == "" {
		baseURL = defaultNominatimURL
	}
	return &GeocodeService{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: 5 * time.Second},
		redisClient: redisClient,
	}
}

// nominatimCandidate mirrors the fields of a Nominatim search row needed to
// pick a coordinate.
type nominatimCandidate struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve geocodes the raw postal-code text. The text is sent as entered,
// with no shape validation or normalization.
func (s *GeocodeService) Resolve(ctx context.Context, postalCode string) (models.GeoPoint, error) {
	cacheKey := "geocode:" + postalCode
	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var point models.GeoPoint
			if err := json.Unmarshal([]byte(cached), &point); err == nil {
				return point, nil
			}
			log.Printf("Failed to unmarshal cached geocode for %q: %v", postalCode, err)
		}
	}

	params := url.Values{}
	params.Add("q", postalCode)
	params.Add("format", "jsonv2")
	params.Add("limit", "1")

	candidates, err := s.query(ctx, params)
	if err != nil {
		log.Printf("Geocode request failed for %q: %v", postalCode, err)
		return models.GeoPoint{}, errors.ErrGeocodeFailed
	}
	if len(candidates) == 0 {
		return models.GeoPoint{}, errors.ErrGeocodeFailed
	}

	lat, err := strconv.ParseFloat(candidates[0].Lat, 64)
	if err != nil {
		return models.GeoPoint{}, errors.ErrGeocodeFailed
	}
	lon, err := strconv.ParseFloat(candidates[0].Lon, 64)
	if err != nil {
		return models.GeoPoint{}, errors.ErrGeocodeFailed
	}

	point := models.GeoPoint{Lat: lat, Lon: lon}
	if s.redisClient != nil {
		pointJSON, err := json.Marshal(point)
		if err == nil {
			s.redisClient.Set(ctx, cacheKey, pointJSON, geocodeCacheTTL)
		}
	}
	return point, nil
}

func (s *GeocodeService) query(ctx context.Context, params url.Values) ([]nominatimCandidate, error) {
	reqURL := fmt.Sprintf("%s?%s", s.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream geocoder error: %d", resp.StatusCode)
	}

	var candidates []nominatimCandidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}
