package models

import "time"

// UserMarkerTitle labels the marker at the searched location.
const UserMarkerTitle = "YOU"

// UserMarker is the coordinate the user searched for. At most one exists at
// a time; it is replaced on every successful geocode.
type UserMarker struct {
	Coordinate GeoPoint `json:"coordinate"`
}

// Viewport is the visible map region: a center plus an angular span.
type Viewport struct {
	Center  GeoPoint `json:"center"`
	SpanLat float64  `json:"span_lat"`
	SpanLon float64  `json:"span_lon"`
}

// SearchState is the single process-wide search state. It is mutated only by
// the search controller; everyone else sees value snapshots.
type SearchState struct {
	PostalCode   string      `json:"postal_code"`
	Places       []Place     `json:"places"`
	Marker       *UserMarker `json:"marker,omitempty"`
	InFlight     bool        `json:"in_flight"`
	ErrorMessage string      `json:"error_message,omitempty"`
	Viewport     Viewport    `json:"viewport"`
}

// SearchRecord is the audit row written after each successful search.
type SearchRecord struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	UserID      string    `json:"user_id,omitempty" bson:"user_id,omitempty"`
	PostalCode  string    `json:"postal_code" bson:"postal_code"`
	Center      GeoPoint  `json:"center" bson:"center"`
	ResultCount int       `json:"result_count" bson:"result_count"`
	SearchedAt  time.Time `json:"searched_at" bson:"searched_at"`
}
