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
	"github.com/Rdailuo/CafeMap/utils/geo"
	"github.com/redis/go-redis/v9"
)

// PlaceSearcher issues a text query biased to a square region centered on a
// coordinate and returns the raw result rows.
type PlaceSearcher interface {
	Search(ctx context.Context, query string, center models.GeoPoint, sideMeters float64) ([]models.PlaceResult, error)
}

// PlaceStore keeps found places addressable by ID after a search response
// has been returned to the client.
type PlaceStore interface {
	StorePlaces(ctx context.Context, places []models.Place) error
	GetPlace(ctx context.Context, id string) (models.Place, error)
}

// PlaceService searches the Nominatim API with a bounded viewbox and keeps
// each found place in Redis (hash per place plus a geo set).
type PlaceService struct {
	baseURL     string
	client      *http.Client
	RedisClient *redis.Client // Redis client, shared with the other services
}

func NewPlaceService() *PlaceService {
	baseURL := os.Getenv("NOMINATIM_URL")
	if baseURL == "" {
		baseURL = defaultNominatimURL
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		log.Fatal("REDIS_ADDR environment variable is not set")
	}
	redisDBStr := os.Getenv("REDIS_DB")
	if redisDBStr == "" {
		log.Fatal("REDIS_DB environment variable is not set")
	}
	redisDB, err := strconv.Atoi(redisDBStr)
	if err != nil {
		log.Fatalf("Invalid REDIS_DB value: %v", err)
	}

	service := &PlaceService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
	service.RedisClient = redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   redisDB,
	})
	if err := service.RedisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	return service
}

// nominatimPlace mirrors the parts of a Nominatim jsonv2 search row the
// place model needs.
type nominatimPlace struct {
	PlaceID     int64            `json:"place_id"`
	Name        string           `json:"name"`
	DisplayName string           `json:"display_name"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	Address     nominatimAddress `json:"address"`
}

type nominatimAddress struct {
	HouseNumber  string `json:"house_number"`
	Road         string `json:"road"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	Hamlet       string `json:"hamlet"`
	State        string `json:"state"`
	Postcode     string `json:"postcode"`
}

// Search queries the upstream for places matching the text query inside the
// square region of the given side length centered on center.
func (s *PlaceService) Search(ctx context.Context, query string, center models.GeoPoint, sideMeters float64) ([]models.PlaceResult, error) {
	minLat, minLon, maxLat, maxLon := geo.BoundingBox(center.Lat, center.Lon, sideMeters)

	params := url.Values{}
	params.Add("q", query)
	params.Add("format", "jsonv2")
	params.Add("addressdetails", "1")
	params.Add("limit", "50")
	// viewbox is x1,y1,x2,y2: left, top, right, bottom
	params.Add("viewbox", fmt.Sprintf("%f,%f,%f,%f", minLon, maxLat, maxLon, minLat))
	params.Add("bounded", "1")

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
		return nil, fmt.Errorf("upstream search error: %d", resp.StatusCode)
	}

	var rows []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, err
	}

	results := make([]models.PlaceResult, 0, len(rows))
	for _, row := range rows {
		result := models.PlaceResult{
			ID:   strconv.FormatInt(row.PlaceID, 10),
			Name: pickName(row),
			Address: models.AddressComponents{
				Street:     pickStreet(row.Address),
				City:       pickCity(row.Address),
				Region:     row.Address.State,
				PostalCode: row.Address.Postcode,
			},
		}
		lat, latErr := strconv.ParseFloat(row.Lat, 64)
		lon, lonErr := strconv.ParseFloat(row.Lon, 64)
		if latErr == nil && lonErr == nil {
			result.Location = &models.GeoPoint{Lat: lat, Lon: lon}
		}
		results = append(results, result)
	}

	log.Printf("Found %d places for %q near %f,%f", len(results), query, center.Lat, center.Lon)
	return results, nil
}

func pickName(row nominatimPlace) string {
	if row.Name != "" {
		return row.Name
	}
	return row.DisplayName
}

func pickStreet(address nominatimAddress) string {
	if address.Road == "" {
		return ""
	}
	if address.HouseNumber != "" {
		return address.HouseNumber + " " + address.Road
	}
	return address.Road
}

func pickCity(address nominatimAddress) string {
	if address.City != "" {
		return address.City
	}
	if address.Town != "" {
		return address.Town
	}
	if address.Village != "" {
		return address.Village
	}
	if address.Municipality != "" {
		return address.Municipality
	}
	return address.Hamlet
}

// StorePlaces keeps each place in a Redis hash and the shared geo set so
// detail and directions lookups can resolve a place by ID later.
func (s *PlaceService) StorePlaces(ctx context.Context, places []models.Place) error {
	if s.RedisClient == nil {
		return nil
	}
	for _, place := range places {
		placeJSON, err := json.Marshal(place)
		if err != nil {
			log.Printf("Failed to marshal place %s: %v", place.Name, err)
			continue
		}
		if err := s.RedisClient.HSet(ctx, "place:"+place.ID, "data", placeJSON).Err(); err != nil {
			log.Printf("Failed to set place %s in Redis: %v", place.Name, err)
			continue
		}
		if place.Location == nil {
			continue
		}
		err = s.RedisClient.GeoAdd(ctx, "places:geo", &redis.GeoLocation{
			Name:      place.ID,
			Longitude: place.Location.Lon,
			Latitude:  place.Location.Lat,
		}).Err()
		if err != nil {
			log.Printf("Failed to add place %s to Redis geo set: %v", place.Name, err)
		}
	}
	return nil
}

// GetPlace resolves a previously stored place by ID.
func (s *PlaceService) GetPlace(ctx context.Context, id string) (models.Place, error) {
	if s.RedisClient == nil {
		return models.Place{}, errors.ErrNotFound
	}
	placeJSON, err := s.RedisClient.HGet(ctx, "place:"+id, "data").Result()
	if err != nil {
		return models.Place{}, errors.ErrNotFound
	}
	var place models.Place
	if err := json.Unmarshal([]byte(placeJSON), &place); err != nil {
		log.Printf("Failed to unmarshal place %s: %v", id, err)
		return models.Place{}, errors.ErrNotFound
	}
	return place, nil
}
