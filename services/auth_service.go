package services

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Rdailuo/CafeMap/models"
	"github.com/Rdailuo/CafeMap/utils/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Register creates a new user
func (s *UserService) Register(ctx context.Context, username, email, password string) (string, error) {
	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "HASH_ERROR", "failed to hash password", http.StatusInternalServerError)
	}

	user := models.User{
		PublicID:       uuid.New().String(),
		Username:       username,
		Email:          email,
		PasswordHash:   string(passwordHash),
		FavoritePlaces: []string{},
	}

	// Insert into MongoDB
	_, err = s.collection.InsertOne(ctx, user)
	if err != nil {
		return "", insertUserError(err)
	}

	// Cache in Redis
	userJSON, err := json.Marshal(user)
	if err != nil {
		return "", errors.Wrap(err, "DB_ERROR", "Failed to marshal user", http.StatusInternalServerError)
	}
	s.redisClient.Set(ctx, "user:"+user.PublicID, userJSON, 24*time.Hour)

	return user.PublicID, nil
}

// insertUserError maps a failed user insert to an API error. A duplicate
// username or email trips the unique index and surfaces as a conflict.
func insertUserError(err error) *errors.APIError {
	if mongo.IsDuplicateKeyError(err) {
		return errors.ErrConflict
	}
	return errors.Wrap(err, "DB_ERROR", "failed to create user in database", http.StatusInternalServerError)
}

// Login authenticates a user and returns a JWT
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return "", errors.ErrNotFound
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", errors.NewAPIError("INVALID_CREDENTIALS", "Invalid username or password", http.StatusUnauthorized)
	}

	// Generate JWT
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID":   user.PublicID,
		"username": user.Username,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", errors.Wrap(err, "JWT_ERROR", "Failed to generate token", http.StatusInternalServerError)
	}

	// Cache user in Redis
	userJSON, err := json.Marshal(user)
	if err != nil {
		return tokenString, err
	}
	s.redisClient.Set(ctx, "user:"+user.PublicID, userJSON, 24*time.Hour)

	return tokenString, nil
}
