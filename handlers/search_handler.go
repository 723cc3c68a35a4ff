package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Rdailuo/CafeMap/middleware"
	"github.com/Rdailuo/CafeMap/models"
	"github.com/Rdailuo/CafeMap/services"
	"github.com/Rdailuo/CafeMap/utils/errors"
	"github.com/gorilla/mux"
)

type SearchHandler struct {
	controller *services.SearchController
	directions *services.DirectionsService
}

// SearchStateResponse is the map payload a client renders: the raw state
// plus the flattened annotation list.
type SearchStateResponse struct {
	State       models.SearchState  `json:"state"`
	Annotations []models.Annotation `json:"annotations"`
	Count       int                 `json:"count"`
}

type PlaceDetailResponse struct {
	Place models.Place `json:"place"`
}

func NewSearchHandler(controller *services.SearchController, directions *services.DirectionsService) *SearchHandler {
	return &SearchHandler{controller: controller, directions: directions}
}

// SubmitSearch handles POST /search: geocode the postal code, search for
// coffee shops around it, and return the updated map state.
func (h *SearchHandler) SubmitSearch(w http.ResponseWriter, r *http.Request) {
	var input struct {
		PostalCode string `json:"postal_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if input.PostalCode == "" {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	state, err := h.controller.SubmitPostalCode(r.Context(), input.PostalCode)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	writeState(w, state)
}

// RefreshSearch handles POST /search/refresh: re-runs the place search at
// the current marker without geocoding again.
func (h *SearchHandler) RefreshSearch(w http.ResponseWriter, r *http.Request) {
	state := h.controller.State()
	if state.Marker == nil {
		middleware.WriteError(w, errors.NewAPIError("NO_SEARCH_CENTER", "Search for a location first", http.StatusUnprocessableEntity))
		return
	}

	state, err := h.controller.RunSearch(r.Context(), state.Marker.Coordinate)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	writeState(w, state)
}

// GetState handles GET /state.
func (h *SearchHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeState(w, h.controller.State())
}

// GetPlace handles GET /places/{id}.
func (h *SearchHandler) GetPlace(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	place, err := h.controller.PlaceByID(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(PlaceDetailResponse{Place: place})
}

// GetDirections handles GET /places/{id}/directions: builds the external
// maps hand-off from the current search center to the place.
func (h *SearchHandler) GetDirections(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	place, center, err := h.controller.DirectionsFor(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	launch := h.directions.Launch(
		services.Waypoint{Label: services.StartLabel, Coordinate: center},
		services.Waypoint{Label: place.Name, Coordinate: *place.Location},
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(launch)
}

func writeState(w http.ResponseWriter, state models.SearchState) {
	annotations := state.Annotations()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SearchStateResponse{
		State:       state,
		Annotations: annotations,
		Count:       len(state.Places),
	})
}
