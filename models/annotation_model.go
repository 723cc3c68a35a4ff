package models

// AnnotationKind tags the two kinds of map annotation.
type AnnotationKind string

const (
	AnnotationUser  AnnotationKind = "user"
	AnnotationPlace AnnotationKind = "place"
)

// Annotation is a map marker: either the user marker or a found place.
// Both kinds share a coordinate and a title; place annotations additionally
// carry the place ID and its address as a subtitle.
type Annotation struct {
	Kind       AnnotationKind `json:"kind"`
	Title      string         `json:"title"`
	Subtitle   string         `json:"subtitle,omitempty"`
	Coordinate GeoPoint       `json:"coordinate"`
	PlaceID    string         `json:"place_id,omitempty"`
}

// UserAnnotation builds the annotation for the searched location.
func UserAnnotation(m UserMarker) Annotation {
	return Annotation{
		Kind:       AnnotationUser,
		Title:      UserMarkerTitle,
		Coordinate: m.Coordinate,
	}
}

// PlaceAnnotation builds the annotation for a found place. Places without a
// coordinate cannot be rendered on the map; ok is false for those.
func PlaceAnnotation(p Place) (Annotation, bool) {
	if p.Location == nil {
		return Annotation{}, false
	}
	return Annotation{
		Kind:       AnnotationPlace,
		Title:      p.Name,
		Subtitle:   p.Address,
		Coordinate: *p.Location,
		PlaceID:    p.ID,
	}, true
}

// Annotations flattens a search state into the marker set a map client
// renders: the user marker first, then one annotation per locatable place.
func (s SearchState) Annotations() []Annotation {
	annotations := make([]Annotation, 0, len(s.Places)+1)
	if s.Marker != nil {
		annotations = append(annotations, UserAnnotation(*s.Marker))
	}
	for _, place := range s.Places {
		if a, ok := PlaceAnnotation(place); ok {
			annotations = append(annotations, a)
		}
	}
	return annotations
}
