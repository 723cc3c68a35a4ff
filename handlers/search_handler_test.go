package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Rdailuo/CafeMap/models"
	"github.com/Rdailuo/CafeMap/services"
	"github.com/Rdailuo/CafeMap/utils/errors"
	"github.com/gorilla/mux"
)

type stubGeocoder struct {
	points map[string]models.GeoPoint
}

func (s *stubGeocoder) Resolve(ctx context.Context, postalCode string) (models.GeoPoint, error) {
	point, ok := s.points[postalCode]
	if !ok {
		return models.GeoPoint{}, errors.ErrGeocodeFailed
	}
	return point, nil
}

type stubSearcher struct {
	results []models.PlaceResult
}

func (s *stubSearcher) Search(ctx context.Context, query string, center models.GeoPoint, sideMeters float64) ([]models.PlaceResult, error) {
	return s.results, nil
}

func newTestRouter(geocoder services.Geocoder, searcher services.PlaceSearcher) (*mux.Router, *services.SearchController) {
	controller := services.NewSearchController(geocoder, searcher, nil, nil)
	handler := NewSearchHandler(controller, services.NewDirectionsService())

	r := mux.NewRouter()
	r.HandleFunc("/search", handler.SubmitSearch).Methods("POST")
	r.HandleFunc("/search/refresh", handler.RefreshSearch).Methods("POST")
	r.HandleFunc("/state", handler.GetState).Methods("GET")
	r.HandleFunc("/places/{id}", handler.GetPlace).Methods("GET")
	r.HandleFunc("/places/{id}/directions", handler.GetDirections).Methods("GET")
	return r, controller
}

func stubResults() []models.PlaceResult {
	return []models.PlaceResult{
		{
			ID:   "101",
			Name: "Bean There",
			Address: models.AddressComponents{
				Street: "123 Main St",
				City:   "Springfield",
			},
			Location: &models.GeoPoint{Lat: 40.01, Lon: -74.0},
		},
		{
			ID:       "102",
			Name:     "Daily Grind",
			Address:  models.AddressComponents{},
			Location: &models.GeoPoint{Lat: 40.02, Lon: -74.0},
		},
	}
}

func TestSubmitSearchReturnsAnnotatedState(t *testing.T) {
	center := models.GeoPoint{Lat: 40.0, Lon: -74.0}
	router, _ := newTestRouter(
		&stubGeocoder{points: map[string]models.GeoPoint{"12345": center}},
		&stubSearcher{results: stubResults()},
	)

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"postal_code":"12345"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp SearchStateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response does not decode: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("expected 2 places, got %d", resp.Count)
	}
	if len(resp.Annotations) != 3 {
		t.Fatalf("expected marker plus 2 place annotations, got %d", len(resp.Annotations))
	}
	if resp.Annotations[0].Title != models.UserMarkerTitle {
		t.Fatalf("expected the %q marker first, got %q", models.UserMarkerTitle, resp.Annotations[0].Title)
	}
	if resp.State.Marker == nil || resp.State.Marker.Coordinate != center {
		t.Fatalf("unexpected marker %+v", resp.State.Marker)
	}
	if resp.State.Places[1].Address != models.AddressUnavailable {
		t.Fatalf("expected address fallback, got %q", resp.State.Places[1].Address)
	}
}

func TestSubmitSearchRejectsEmptyPostalCode(t *testing.T) {
	router, _ := newTestRouter(&stubGeocoder{}, &stubSearcher{})

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"postal_code":""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSubmitSearchGeocodeFailure(t *testing.T) {
	router, _ := newTestRouter(&stubGeocoder{}, &stubSearcher{results: stubResults()})

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"postal_code":"00000"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var apiErr errors.APIError
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("error response does not decode: %v", err)
	}
	if apiErr.Code != "GEOCODE_FAILED" {
		t.Fatalf("unexpected error code %q", apiErr.Code)
	}
	if apiErr.Message != "Invalid zip code. Please try again." {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestGetStateMarshalsEmptyPlacesAsArray(t *testing.T) {
	router, _ := newTestRouter(&stubGeocoder{}, &stubSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"places":[]`) {
		t.Fatalf("expected empty places array in %s", rec.Body.String())
	}
}

func TestRefreshSearchRequiresMarker(t *testing.T) {
	router, _ := newTestRouter(&stubGeocoder{}, &stubSearcher{})

	req := httptest.NewRequest(http.MethodPost, "/search/refresh", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 before any search, got %d", rec.Code)
	}
}

func TestRefreshSearchRerunsAtMarker(t *testing.T) {
	center := models.GeoPoint{Lat: 40.0, Lon: -74.0}
	router, controller := newTestRouter(
		&stubGeocoder{points: map[string]models.GeoPoint{"12345": center}},
		&stubSearcher{results: stubResults()},
	)
	if _, err := controller.SubmitPostalCode(context.Background(), "12345"); err != nil {
		t.Fatalf("seed search failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/search/refresh", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp SearchStateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response does not decode: %v", err)
	}
	if resp.State.Marker == nil || resp.State.Marker.Coordinate != center {
		t.Fatalf("expected marker preserved across refresh, got %+v", resp.State.Marker)
	}
	if resp.Count != 2 {
		t.Fatalf("expected 2 places after refresh, got %d", resp.Count)
	}
}

func TestGetPlaceDetail(t *testing.T) {
	center := models.GeoPoint{Lat: 40.0, Lon: -74.0}
	router, controller := newTestRouter(
		&stubGeocoder{points: map[string]models.GeoPoint{"12345": center}},
		&stubSearcher{results: stubResults()},
	)
	if _, err := controller.SubmitPostalCode(context.Background(), "12345"); err != nil {
		t.Fatalf("seed search failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/places/101", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp PlaceDetailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response does not decode: %v", err)
	}
	if resp.Place.Name != "Bean There" {
		t.Fatalf("unexpected place %+v", resp.Place)
	}
	if resp.Place.Distance == "" || !strings.HasSuffix(resp.Place.Distance, " miles away") {
		t.Fatalf("unexpected distance label %q", resp.Place.Distance)
	}
}

func TestGetPlaceNotFound(t *testing.T) {
	router, _ := newTestRouter(&stubGeocoder{}, &stubSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/places/404", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetDirections(t *testing.T) {
	center := models.GeoPoint{Lat: 40.0, Lon: -74.0}
	router, controller := newTestRouter(
		&stubGeocoder{points: map[string]models.GeoPoint{"12345": center}},
		&stubSearcher{results: stubResults()},
	)
	if _, err := controller.SubmitPostalCode(context.Background(), "12345"); err != nil {
		t.Fatalf("seed search failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/places/101/directions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var launch services.LaunchRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &launch); err != nil {
		t.Fatalf("response does not decode: %v", err)
	}
	if launch.Start.Label != services.StartLabel {
		t.Fatalf("expected start labeled %q, got %q", services.StartLabel, launch.Start.Label)
	}
	if launch.Start.Coordinate != center {
		t.Fatalf("expected start at search center, got %+v", launch.Start.Coordinate)
	}
	if launch.End.Label != "Bean There" {
		t.Fatalf("expected end labeled with place name, got %q", launch.End.Label)
	}
	if launch.Mode != services.TravelModeDriving || !launch.ShowTraffic {
		t.Fatalf("unexpected mode/traffic: %q %v", launch.Mode, launch.ShowTraffic)
	}
	if launch.URL == "" {
		t.Fatal("expected a launch URL")
	}
}

func TestGetDirectionsBeforeAnySearch(t *testing.T) {
	router, _ := newTestRouter(&stubGeocoder{}, &stubSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/places/101/directions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}
