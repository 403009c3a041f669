package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskcanvas/models"
)

// BoardRepository reads and writes the layout stored on the user document.
type BoardRepository struct {
	collection *mongo.Collection
}

func NewBoardRepository(db *mongo.Database) *BoardRepository {
	return &BoardRepository{collection: db.Collection(UsersCollection)}
}

// Find returns the stored layout. found is false when the user has never saved one.
func (r *BoardRepository) Find(ctx context.Context, userID string) (layout models.Layout, found bool, err error) {
	oid, err := objectID(userID, "User")
	if err != nil {
		return models.Layout{}, false, err
	}
	opts := options.FindOne().SetProjection(bson.M{"board": 1})
	var doc userDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Layout{}, false, nil
		}
		return models.Layout{}, false, fmt.Errorf("failed to retrieve board: %w", err)
	}
	if doc.Board == nil || len(doc.Board.Columns) == 0 {
		return models.Layout{}, false, nil
	}
	for i := range doc.Board.Columns {
		if doc.Board.Columns[i].TaskIDs == nil {
			doc.Board.Columns[i].TaskIDs = []string{}
		}
	}
	return *doc.Board, true, nil
}

// Save replaces the user's layout, creating the document if needed.
func (r *BoardRepository) Save(ctx context.Context, userID string, layout models.Layout) error {
	oid, err := objectID(userID, "User")
	if err != nil {
		return err
	}
	opts := options.Update().SetUpsert(true)
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"board": layout}}, opts)
	if err != nil {
		return fmt.Errorf("failed to update board: %w", err)
	}
	return nil
}
