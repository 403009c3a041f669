package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskcanvas/models"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection(UsersCollection)}
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}
	return nil
}

// Create stores a new user. Emails are stored lower-cased and must be unique.
func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	doc := userDocument{
		ID:       primitive.NewObjectID(),
		Name:     user.Name,
		Email:    strings.ToLower(user.Email),
		Password: user.PasswordHash,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, models.NewError(models.ErrConflict, "User with this email already exists")
		}
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return doc.toModel(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *UserRepository) FindByID(ctx context.Context, userID string) (models.User, error) {
	oid, err := objectID(userID, "User")
	if err != nil {
		return models.User{}, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var doc userDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, models.NewError(models.ErrNotFound, "User not found")
		}
		return models.User{}, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return doc.toModel(), nil
}
