package services

import (
	"context"

	"taskcanvas/logging"
	"taskcanvas/models"
)

type BoardStore interface {
	Find(ctx context.Context, userID string) (models.Layout, bool, error)
	Save(ctx context.Context, userID string, layout models.Layout) error
}

type BoardService struct {
	boards BoardStore
}

func NewBoardService(boards BoardStore) *BoardService {
	return &BoardService{boards: boards}
}

// GetBoard returns the owner's layout, or the default columns if none was saved.
func (s *BoardService) GetBoard(ctx context.Context, currentUserID, ownerID string) (models.Layout, error) {
	if currentUserID != ownerID {
		return models.Layout{}, forbidden()
	}
	layout, found, err := s.boards.Find(ctx, ownerID)
	if err != nil {
		return models.Layout{}, err
	}
	if !found {
		return models.DefaultLayout(), nil
	}
	return layout, nil
}

func (s *BoardService) SaveBoard(ctx context.Context, currentUserID, ownerID string, layout models.Layout) error {
	if currentUserID != ownerID {
		return forbidden()
	}
	if err := layout.Validate(); err != nil {
		return err
	}
	if err := s.boards.Save(ctx, ownerID, layout.Clone()); err != nil {
		return err
	}
	logging.Logger.Debugf("Event ID: BOARD_SAVED, Description: Board of user %s saved with %d columns", ownerID, len(layout.Columns))
	return nil
}

// placeTask lists taskID at the end of columnID, removing it from any other
// column. changed is false when columnID already lists the task, which keeps
// the position a client chose with a move.
func placeTask(layout models.Layout, taskID, columnID string) (placed models.Layout, changed bool, err error) {
	placed = layout.Clone()
	dest := -1
	for i, c := range placed.Columns {
		if c.ID == columnID {
			dest = i
		}
	}
	if dest < 0 {
		return models.Layout{}, false, models.NewError(models.ErrNotFound, "Column not found: "+columnID)
	}
	for _, id := range placed.Columns[dest].TaskIDs {
		if id == taskID {
			return placed, false, nil
		}
	}
	for i := range placed.Columns {
		kept := placed.Columns[i].TaskIDs[:0]
		for _, id := range placed.Columns[i].TaskIDs {
			if id != taskID {
				kept = append(kept, id)
			}
		}
		placed.Columns[i].TaskIDs = kept
	}
	placed.Columns[dest].TaskIDs = append(placed.Columns[dest].TaskIDs, taskID)
	return placed, true, nil
}
