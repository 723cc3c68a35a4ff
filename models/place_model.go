package models

import "strings"

// AddressUnavailable is the fallback shown when a place has no usable
// address components.
const AddressUnavailable = "Address unavailable"

type GeoPoint struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lon float64 `json:"lon" bson:"lon"`
}

// Place is one coffee shop found by a search. The list of places is
// replaced wholesale on every new search and never mutated afterwards.
type Place struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Location     *GeoPoint `json:"location,omitempty"` // nil when the upstream row had no parseable coordinate
	SearchCenter GeoPoint  `json:"search_center"`
	Distance     string    `json:"distance,omitempty"` // e.g. "1.3 miles away"; empty when Location is nil
}

// AddressComponents holds the structured pieces of a postal address as
// returned by the search upstream.
type AddressComponents struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// Format joins the components that are present, in street/city/region/postal
// order, separated by ", ". When nothing is present it returns the
// AddressUnavailable literal, so the result is never empty.
func (a AddressComponents) Format() string {
	parts := make([]string, 0, 4)
	for _, part := range []string{a.Street, a.City, a.Region, a.PostalCode} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return AddressUnavailable
	}
	return strings.Join(parts, ", ")
}

// PlaceResult is one raw row from the place-search upstream, before it is
// turned into a Place relative to a search center.
type PlaceResult struct {
	ID       string
	Name     string
	Address  AddressComponents
	Location *GeoPoint
}
