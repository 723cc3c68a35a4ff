package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rdailuo/CafeMap/utils/errors"
)

func newTestGeocodeService(upstream *httptest.Server) *GeocodeService {
	return &GeocodeService{
		baseURL: upstream.URL,
		client:  &http.Client{Timeout: 2 * time.Second},
	}
}

func TestResolveFirstCandidateWins(t *testing.T) {
	var gotQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"38.8977","lon":"-77.0365"},{"lat":"0","lon":"0"}]`))
	}))
	defer upstream.Close()

	s := newTestGeocodeService(upstream)
	point, err := s.Resolve(context.Background(), "20500")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "20500" {
		t.Fatalf("expected raw postal code sent upstream, got %q", gotQuery)
	}
	if point.Lat != 38.8977 || point.Lon != -77.0365 {
		t.Fatalf("expected first candidate's coordinate, got %+v", point)
	}
}

func TestResolveEmptyResultIsGeocodeFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer upstream.Close()

	s := newTestGeocodeService(upstream)
	if _, err := s.Resolve(context.Background(), "00000"); err != errors.ErrGeocodeFailed {
		t.Fatalf("expected ErrGeocodeFailed, got %v", err)
	}
}

func TestResolveUpstreamErrorIsGeocodeFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	s := newTestGeocodeService(upstream)
	if _, err := s.Resolve(context.Background(), "20500"); err != errors.ErrGeocodeFailed {
		t.Fatalf("expected ErrGeocodeFailed, got %v", err)
	}
}

func TestResolveUnparseableCoordinateIsGeocodeFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"not-a-number","lon":"-77.0365"}]`))
	}))
	defer upstream.Close()

	s := newTestGeocodeService(upstream)
	if _, err := s.Resolve(context.Background(), "20500"); err != errors.ErrGeocodeFailed {
		t.Fatalf("expected ErrGeocodeFailed, got %v", err)
	}
}
