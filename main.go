package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/Rdailuo/CafeMap/handlers"
	"github.com/Rdailuo/CafeMap/middleware"
	"github.com/Rdailuo/CafeMap/services"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment configuration")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	// Initialize services and handlers
	placeService := services.NewPlaceService()
	geocodeService := services.NewGeocodeService(placeService.RedisClient)
	userService := services.NewUserService(placeService.RedisClient, jwtSecret)
	directionsService := services.NewDirectionsService()

	controller := services.NewSearchController(geocodeService, placeService, placeService, userService)

	searchHandler := handlers.NewSearchHandler(controller, directionsService)
	authHandler := handlers.NewAuthHandler(userService, jwtSecret)
	userHandler := handlers.NewUserHandler(userService, controller)

	r := mux.NewRouter()

	// CORS middleware
	allowedOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}
	r.Use(middleware.CORSMiddleware(allowedOrigins))
	r.Use(middleware.ErrorMiddleware())

	// Routes

	// Search routes
	r.HandleFunc("/search", searchHandler.SubmitSearch).Methods("POST", "OPTIONS")
	r.HandleFunc("/search/refresh", searchHandler.RefreshSearch).Methods("POST", "OPTIONS")
	r.HandleFunc("/state", searchHandler.GetState).Methods("GET", "OPTIONS")
	r.HandleFunc("/places/{id}", searchHandler.GetPlace).Methods("GET", "OPTIONS")
	r.HandleFunc("/places/{id}/directions", searchHandler.GetDirections).Methods("GET", "OPTIONS")

	// Auth routes
	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authHandler.RegisterUser).Methods("POST", "OPTIONS")
	authRouter.HandleFunc("/login", authHandler.LoginUser).Methods("POST", "OPTIONS")

	// User routes
	userRouter := r.PathPrefix("/user").Subrouter()
	userRouter.Use(middleware.JWTMiddleware(jwtSecret)) // Apply JWT middleware to user routes
	userRouter.HandleFunc("/favorites/{id}", userHandler.FavoritePlace).Methods("POST", "OPTIONS")
	userRouter.HandleFunc("/favorites", userHandler.ListFavorites).Methods("GET", "OPTIONS")
	userRouter.HandleFunc("/history", userHandler.GetHistory).Methods("GET", "OPTIONS")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("Server starting on :" + port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}
