package services

import (
	"fmt"
	"net/url"

	"github.com/Rdailuo/CafeMap/models"
)

const (
	// StartLabel names the start waypoint of every directions hand-off.
	StartLabel = "Your Location"

	// TravelModeDriving is the only travel mode the hand-off requests.
	TravelModeDriving = "driving"

	directionsBaseURL = "https://maps.google.com/"
)

// Waypoint is one end of a directions request: a coordinate plus the label
// the external maps application shows for it.
type Waypoint struct {
	Label      string          `json:"label"`
	Coordinate models.GeoPoint `json:"coordinate"`
}

// LaunchRequest is the fully built hand-off to the external maps
// application. Control leaves this application once the client opens URL;
// no return value is consumed.
type LaunchRequest struct {
	Start       Waypoint `json:"start"`
	End         Waypoint `json:"end"`
	Mode        string   `json:"mode"`
	ShowTraffic bool     `json:"show_traffic"`
	URL         string   `json:"url"`
}

// DirectionsService builds external maps URLs for turn-by-turn directions.
type DirectionsService struct {
	baseURL string
}

func NewDirectionsService() *DirectionsService {
	return &DirectionsService{baseURL: directionsBaseURL}
}

// Launch builds the driving-directions hand-off from start to end with the
// traffic layer enabled.
func (s *DirectionsService) Launch(start, end Waypoint) LaunchRequest {
	params := url.Values{}
	params.Add("saddr", formatWaypoint(start))
	params.Add("daddr", formatWaypoint(end))
	params.Add("dirflg", "d") // driving
	params.Add("layer", "t")  // traffic

	return LaunchRequest{
		Start:       start,
		End:         end,
		Mode:        TravelModeDriving,
		ShowTraffic: true,
		URL:         fmt.Sprintf("%s?%s", s.baseURL, params.Encode()),
	}
}

func formatWaypoint(w Waypoint) string {
	return fmt.Sprintf("%f,%f (%s)", w.Coordinate.Lat, w.Coordinate.Lon, w.Label)
}
