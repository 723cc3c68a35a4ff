package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Rdailuo/CafeMap/models"
	"github.com/Rdailuo/CafeMap/utils/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserService struct {
	collection  *mongo.Collection
	searches    *mongo.Collection
	redisClient *redis.Client
	jwtSecret   string
}

func NewUserService(redisClient *redis.Client, jwtSecret string) *UserService {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI environment variable is not set")
	}
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("MongoDB connection failed: %v", err)
	}
	if err := client.Ping(context.Background(), nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")
	db := client.Database("cafemap_db")
	collection := db.Collection("users")
	searches := db.Collection("searches")

	// Ensure unique index on username and email
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}, {Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err = collection.Indexes().CreateOne(context.Background(), indexModel)
	if err != nil {
		log.Printf("Failed to create unique index on users: %v", err)
	}

	return &UserService{
		collection:  collection,
		searches:    searches,
		redisClient: redisClient,
		jwtSecret:   jwtSecret,
	}
}

// GetUser retrieves a user from Redis or MongoDB
func (s *UserService) GetUser(ctx context.Context, userID string) (models.User, error) {
	var user models.User

	// Check Redis first
	userJSON, err := s.redisClient.Get(ctx, "user:"+userID).Result()
	if err == nil {
		if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
			log.Printf("Failed to unmarshal user %s: %v", userID, err)
		} else {
			return user, nil
		}
	}

	err = s.collection.FindOne(ctx, bson.M{"public_id": bson.M{"$eq": userID}}).Decode(&user)
	if err != nil {
		return models.User{}, err
	}

	// Cache in Redis
	userJSONBytes, err := json.Marshal(user)
	if err != nil {
		return user, err
	}
	s.redisClient.Set(ctx, "user:"+userID, userJSONBytes, 24*time.Hour)

	return user, nil
}

// FavoritePlace adds a place ID to the user's favorites.
func (s *UserService) FavoritePlace(ctx context.Context, placeID string) error {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return errors.ErrUnauthorized
	}
	if placeID == "" {
		return errors.ErrInvalidInput
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found: %v", err)
	}

	update := bson.M{"$addToSet": bson.M{"favorite_places": placeID}}
	_, err = s.collection.UpdateOne(ctx, bson.M{"public_id": userID}, update)
	if err != nil {
		log.Printf("Failed to update favorites for user %s: %v", userID, err)
		return err
	}

	// Refresh the Redis copy
	found := false
	for _, id := range user.FavoritePlaces {
		if id == placeID {
			found = true
			break
		}
	}
	if !found {
		user.FavoritePlaces = append(user.FavoritePlaces, placeID)
	}
	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.redisClient.Set(ctx, "user:"+userID, userJSON, 24*time.Hour).Err()
}

// ListFavorites returns the user's favorite place IDs.
func (s *UserService) ListFavorites(ctx context.Context) ([]string, error) {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return nil, errors.ErrUnauthorized
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, errors.ErrNotFound
	}
	if user.FavoritePlaces == nil {
		return []string{}, nil
	}
	return user.FavoritePlaces, nil
}

// RecordSearch persists one completed search. When the context carries an
// authenticated user, the record is attributed to them.
func (s *UserService) RecordSearch(ctx context.Context, record models.SearchRecord) error {
	if userID, ok := ctx.Value("userID").(string); ok {
		record.UserID = userID
	}
	record.ID = uuid.New().String()
	_, err := s.searches.InsertOne(ctx, record)
	if err != nil {
		log.Printf("Failed to record search: %v", err)
		return err
	}
	return nil
}

// ListHistory returns the user's most recent searches, newest first.
func (s *UserService) ListHistory(ctx context.Context, limit int64) ([]models.SearchRecord, error) {
	userID, ok := ctx.Value("userID").(string)
	if !ok || userID == "" {
		return nil, errors.ErrUnauthorized
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "searched_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := s.searches.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		log.Printf("Failed to load search history for %s: %v", userID, err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.SearchRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.SearchRecord{}
	}
	return records, nil
}
