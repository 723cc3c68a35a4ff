package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Rdailuo/CafeMap/middleware"
	"github.com/Rdailuo/CafeMap/models"
	"github.com/Rdailuo/CafeMap/services"
	"github.com/Rdailuo/CafeMap/utils/errors"
	"github.com/gorilla/mux"
)

type UserHandler struct {
	userService *services.UserService
	controller  *services.SearchController
}

type FavoritesResponse struct {
	Favorites []models.Place `json:"favorites"`
	Count     int            `json:"count"`
}

type HistoryResponse struct {
	Searches []models.SearchRecord `json:"searches"`
	Count    int                   `json:"count"`
}

func NewUserHandler(userService *services.UserService, controller *services.SearchController) *UserHandler {
	return &UserHandler{
		userService: userService,
		controller:  controller,
	}
}

// FavoritePlace handles POST /user/favorites/{id}.
func (h *UserHandler) FavoritePlace(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	// Only places known to the system can be favorited.
	if _, err := h.controller.PlaceByID(r.Context(), id); err != nil {
		middleware.WriteError(w, errors.ErrNotFound)
		return
	}

	if err := h.userService.FavoritePlace(r.Context(), id); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success", "place_id": id})
}

// ListFavorites handles GET /user/favorites. Favorites whose place record
// has expired from the store are skipped rather than failing the request.
func (h *UserHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ids, err := h.userService.ListFavorites(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	favorites := make([]models.Place, 0, len(ids))
	for _, id := range ids {
		place, err := h.controller.PlaceByID(r.Context(), id)
		if err != nil {
			continue
		}
		favorites = append(favorites, place)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(FavoritesResponse{Favorites: favorites, Count: len(favorites)})
}

// GetHistory handles GET /user/history.
func (h *UserHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := int64(0)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			middleware.WriteError(w, errors.ErrInvalidInput)
			return
		}
		limit = parsed
	}

	records, err := h.userService.ListHistory(r.Context(), limit)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HistoryResponse{Searches: records, Count: len(records)})
}
