// Package mongodb implements the persistence collaborator on MongoDB.
package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lizachat/liza/internal/domain/errs"
	userdomain "github.com/lizachat/liza/internal/domain/user"
	"github.com/lizachat/liza/internal/domain/uuid"
)

// MongoUserStore implements the application-layer Store interfaces on a
// MongoDB collection with a unique index on external_id.
type MongoUserStore struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// UserStoreOption configures MongoUserStore.
type UserStoreOption func(*MongoUserStore)

// WithUserStoreLogger sets the logger for the user store.
func WithUserStoreLogger(logger *slog.Logger) UserStoreOption {
	return func(s *MongoUserStore) {
		s.logger = logger
	}
}

// NewMongoUserStore creates a new MongoDB-backed user store.
func NewMongoUserStore(collection *mongo.Collection, opts ...UserStoreOption) *MongoUserStore {
	s := &MongoUserStore{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// GetByExternalID finds a user by the identity provider's ID.
// Point lookup backed by the unique external_id index, never a scan.
func (s *MongoUserStore) GetByExternalID(ctx context.Context, externalID string) (*userdomain.User, error) {
	if externalID == "" {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"external_id": externalID}
	var doc userDocument
	err := s.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			s.logger.ErrorContext(ctx, "failed to find user by external ID",
				slog.String("external_id", externalID),
				slog.String("error", err.Error()),
			)
		}
		return nil, HandleMongoError(err, "user")
	}

	return documentToUser(&doc)
}

// ListAll returns a snapshot of every known user in insertion order.
func (s *MongoUserStore) ListAll(ctx context.Context) ([]*userdomain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, HandleMongoError(err, "users")
	}
	defer cursor.Close(ctx)

	var users []*userdomain.User
	for cursor.Next(ctx) {
		var doc userDocument
		if decodeErr := cursor.Decode(&doc); decodeErr != nil {
			return nil, HandleMongoError(decodeErr, "users")
		}
		u, convErr := documentToUser(&doc)
		if convErr != nil {
			return nil, convErr
		}
		users = append(users, u)
	}

	if cursorErr := cursor.Err(); cursorErr != nil {
		return nil, HandleMongoError(cursorErr, "users")
	}

	return users, nil
}

// Upsert inserts a record on first sight of externalID or updates display
// name and avatar URL of the existing one. Email and the internal ID are
// written only on insert, so later syncs cannot alter them. The operation is
// a single atomic findOneAndUpdate and is idempotent for identical inputs.
func (s *MongoUserStore) Upsert(
	ctx context.Context,
	externalID, displayName, email, avatarURL string,
) (*userdomain.User, error) {
	if externalID == "" || displayName == "" {
		return nil, errs.ErrInvalidInput
	}

	now := time.Now().UTC()
	filter := bson.M{"external_id": externalID}
	update := bson.M{
		"$set": bson.M{
			"display_name": displayName,
			"avatar_url":   avatarURL,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{
			"user_id":     uuid.NewUUID().String(),
			"external_id": externalID,
			"email":       email,
			"created_at":  now,
		},
	}

	var doc userDocument
	err := s.collection.FindOneAndUpdate(ctx, filter, update, UpsertOptions()).Decode(&doc)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to upsert user",
			slog.String("external_id", externalID),
			slog.String("error", err.Error()),
		)
		return nil, HandleMongoError(err, "user")
	}

	return documentToUser(&doc)
}

// Count returns the total number of known users.
func (s *MongoUserStore) Count(ctx context.Context) (int, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, HandleMongoError(err, "users")
	}
	return int(count), nil
}

// userDocument is the MongoDB document shape for one user.
type userDocument struct {
	UserID      string    `bson:"user_id"`
	ExternalID  string    `bson:"external_id"`
	DisplayName string    `bson:"display_name"`
	Email       string    `bson:"email"`
	AvatarURL   string    `bson:"avatar_url,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// documentToUser converts a document into the domain aggregate.
func documentToUser(doc *userDocument) (*userdomain.User, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	id, err := uuid.ParseUUID(doc.UserID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	return userdomain.Reconstruct(
		id,
		doc.ExternalID,
		doc.DisplayName,
		doc.Email,
		doc.AvatarURL,
		doc.CreatedAt,
		doc.UpdatedAt,
	), nil
}
