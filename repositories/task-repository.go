package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskcanvas/logging"
	"taskcanvas/models"
)

type TaskRepository struct {
	collection *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{collection: db.Collection(TasksCollection)}
}

// EnsureIndexes creates the per-user lookup index.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create tasks index: %w", err)
	}
	return nil
}

// FindByUser returns the user's tasks, oldest first.
func (r *TaskRepository) FindByUser(ctx context.Context, userID string) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	for cursor.Next(ctx) {
		var doc taskDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode task: %w", err)
		}
		tasks = append(tasks, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, taskID string) (models.Task, error) {
	oid, err := objectID(taskID, "Task")
	if err != nil {
		return models.Task{}, err
	}
	var doc taskDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Task{}, models.NewError(models.ErrNotFound, "Task not found")
		}
		return models.Task{}, fmt.Errorf("failed to retrieve task: %w", err)
	}
	return doc.toModel(), nil
}

// Insert stores task and returns it with its generated id.
func (r *TaskRepository) Insert(ctx context.Context, task models.Task) (models.Task, error) {
	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Labels:      task.Labels,
		ColumnID:    task.ColumnID,
		CreatedAt:   task.CreatedAt,
	}
	if doc.Labels == nil {
		doc.Labels = []models.Label{}
	}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	logging.Logger.Debugf("Event ID: TASK_INSERTED, Description: Task %s stored for user %s", doc.ID.Hex(), doc.UserID)
	return doc.toModel(), nil
}

// Update sets only the fields supplied in patch.
func (r *TaskRepository) Update(ctx context.Context, taskID string, patch models.TaskPatch) error {
	oid, err := objectID(taskID, "Task")
	if err != nil {
		return err
	}
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Labels != nil {
		set["labels"] = *patch.Labels
	}
	if patch.ColumnID != nil {
		set["columnId"] = *patch.ColumnID
	}
	if len(set) == 0 {
		_, err := r.FindByID(ctx, taskID)
		return err
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.NewError(models.ErrNotFound, "Task not found")
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, taskID string) error {
	oid, err := objectID(taskID, "Task")
	if err != nil {
		return err
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.NewError(models.ErrNotFound, "Task not found")
	}
	return nil
}
