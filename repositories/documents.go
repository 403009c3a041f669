package repositories

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskcanvas/models"
)

const (
	TasksCollection = "tasks"
	UsersCollection = "users"
)

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"userId"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Labels      []models.Label     `bson:"labels"`
	ColumnID    string             `bson:"columnId"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d taskDocument) toModel() models.Task {
	labels := d.Labels
	if labels == nil {
		labels = []models.Label{}
	}
	return models.Task{
		ID:          d.ID.Hex(),
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		Labels:      labels,
		ColumnID:    d.ColumnID,
		CreatedAt:   d.CreatedAt,
	}
}

// userDocument also carries the user's board layout, created on first save.
type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
	Board    *models.Layout     `bson:"board,omitempty"`
}

func (d userDocument) toModel() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
	}
}

func objectID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, models.NewError(models.ErrNotFound, what+" not found")
	}
	return oid, nil
}
