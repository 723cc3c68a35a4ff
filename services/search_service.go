package services

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Rdailuo/CafeMap/models"
	"github.com/Rdailuo/CafeMap/utils/errors"
	"github.com/Rdailuo/CafeMap/utils/geo"
)

const (
	// SearchQuery is the fixed text query for the place search.
	SearchQuery = "coffee"

	// SearchRegionMeters is the side length of the square search region,
	// roughly ten miles.
	SearchRegionMeters = 16093.4

	// ViewportSpan is the angular span the viewport recenters to after a
	// successful search.
	ViewportSpan = 0.05
)

// SearchRecorder persists an audit record of a completed search.
type SearchRecorder interface {
	RecordSearch(ctx context.Context, record models.SearchRecord) error
}

// SearchController turns a user-entered postal code into map state:
// geocode, place search, state update. It owns the single SearchState and
// is its only mutation path.
type SearchController struct {
	mu          sync.Mutex
	state       models.SearchState
	generation  uint64 // bumped per submission; stale completions are discarded
	inFlightGen uint64 // generation that set the in-flight flag

	geocoder Geocoder
	searcher PlaceSearcher
	store    PlaceStore     // optional
	history  SearchRecorder // optional
}

func NewSearchController(geocoder Geocoder, searcher PlaceSearcher, store PlaceStore, history SearchRecorder) *SearchController {
	return &SearchController{
		state:    models.SearchState{Places: []models.Place{}},
		geocoder: geocoder,
		searcher: searcher,
		store:    store,
		history:  history,
	}
}

// State returns a snapshot of the current search state.
func (c *SearchController) State() models.SearchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SubmitPostalCode stores the raw text as the current code, geocodes it,
// and on success runs the place search at the resolved coordinate. On
// geocode failure the prior places and marker are left untouched. A
// submission that has been superseded by a newer one is discarded when its
// responses arrive.
func (c *SearchController) SubmitPostalCode(ctx context.Context, text string) (models.SearchState, error) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.state.PostalCode = text
	c.state.ErrorMessage = ""
	c.mu.Unlock()

	center, err := c.geocoder.Resolve(ctx, text)

	c.mu.Lock()
	if gen != c.generation {
		state := c.state
		c.mu.Unlock()
		return state, nil
	}
	if err != nil {
		c.state.ErrorMessage = errors.ErrGeocodeFailed.Message
		state := c.state
		c.mu.Unlock()
		return state, errors.ErrGeocodeFailed
	}
	c.state.Marker = &models.UserMarker{Coordinate: center}
	c.mu.Unlock()

	return c.runSearch(ctx, gen, center)
}

// RunSearch re-runs the place search at an already-resolved coordinate.
func (c *SearchController) RunSearch(ctx context.Context, center models.GeoPoint) (models.SearchState, error) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.state.Marker = &models.UserMarker{Coordinate: center}
	c.mu.Unlock()
	return c.runSearch(ctx, gen, center)
}

func (c *SearchController) runSearch(ctx context.Context, gen uint64, center models.GeoPoint) (models.SearchState, error) {
	c.mu.Lock()
	if gen != c.generation {
		state := c.state
		c.mu.Unlock()
		return state, nil
	}
	c.state.InFlight = true
	c.inFlightGen = gen
	c.state.Places = []models.Place{}
	c.mu.Unlock()

	results, err := c.searcher.Search(ctx, SearchQuery, center, SearchRegionMeters)

	c.mu.Lock()
	// A discarded completion still clears the flag it set, unless a newer
	// search has since taken it over.
	if c.inFlightGen == gen {
		c.state.InFlight = false
	}
	if gen != c.generation {
		state := c.state
		c.mu.Unlock()
		return state, nil
	}
	if err != nil {
		apiErr := errors.SearchFailed(errors.Reason(err))
		c.state.ErrorMessage = apiErr.Message
		state := c.state
		c.mu.Unlock()
		return state, apiErr
	}
	if len(results) == 0 {
		c.state.ErrorMessage = errors.ErrNoPlacesFound.Message
		state := c.state
		c.mu.Unlock()
		return state, errors.ErrNoPlacesFound
	}

	places := make([]models.Place, 0, len(results))
	for _, result := range results {
		place := models.Place{
			ID:           result.ID,
			Name:         result.Name,
			Address:      result.Address.Format(),
			Location:     result.Location,
			SearchCenter: center,
		}
		if result.Location != nil {
			meters := geo.HaversineMeters(result.Location.Lat, result.Location.Lon, center.Lat, center.Lon)
			place.Distance = geo.MilesAway(meters)
		}
		places = append(places, place)
	}
	c.state.Places = places
	c.state.Viewport = models.Viewport{Center: center, SpanLat: ViewportSpan, SpanLon: ViewportSpan}
	state := c.state
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.StorePlaces(ctx, places); err != nil {
			log.Printf("Failed to store places: %v", err)
		}
	}
	if c.history != nil {
		// History is best-effort; the recorder logs its own failures.
		_ = c.history.RecordSearch(ctx, models.SearchRecord{
			PostalCode:  state.PostalCode,
			Center:      center,
			ResultCount: len(places),
			SearchedAt:  time.Now().UTC(),
		})
	}

	return state, nil
}

// PlaceByID resolves a place from the current result list, falling back to
// the place store for results from earlier searches.
func (c *SearchController) PlaceByID(ctx context.Context, id string) (models.Place, error) {
	c.mu.Lock()
	for _, place := range c.state.Places {
		if place.ID == id {
			c.mu.Unlock()
			return place, nil
		}
	}
	c.mu.Unlock()

	if c.store != nil {
		return c.store.GetPlace(ctx, id)
	}
	return models.Place{}, errors.ErrNotFound
}

// DirectionsFor resolves the place and the current search center for a
// directions hand-off. The place must have a coordinate and a search must
// have succeeded at least once.
func (c *SearchController) DirectionsFor(ctx context.Context, id string) (models.Place, models.GeoPoint, error) {
	c.mu.Lock()
	marker := c.state.Marker
	c.mu.Unlock()
	if marker == nil {
		return models.Place{}, models.GeoPoint{}, errors.NewAPIError("NO_SEARCH_CENTER", "Search for a location first", http.StatusUnprocessableEntity)
	}

	place, err := c.PlaceByID(ctx, id)
	if err != nil {
		return models.Place{}, models.GeoPoint{}, err
	}
	if place.Location == nil {
		return models.Place{}, models.GeoPoint{}, errors.NewAPIError("NO_COORDINATE", "Place has no coordinate", http.StatusUnprocessableEntity)
	}
	return place, marker.Coordinate, nil
}
