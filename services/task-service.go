package services

import (
	"context"
	"time"

	"taskcanvas/logging"
	"taskcanvas/models"
)

type TaskStore interface {
	FindByUser(ctx context.Context, userID string) ([]models.Task, error)
	FindByID(ctx context.Context, taskID string) (models.Task, error)
	Insert(ctx context.Context, task models.Task) (models.Task, error)
	Update(ctx context.Context, taskID string, patch models.TaskPatch) error
	Delete(ctx context.Context, taskID string) error
}

// TaskService applies task operations on behalf of the authenticated user.
type TaskService struct {
	tasks  TaskStore
	boards *BoardService
	now    func() time.Time
}

func NewTaskService(tasks TaskStore, boards *BoardService) *TaskService {
	return &TaskService{tasks: tasks, boards: boards, now: func() time.Time { return time.Now().UTC() }}
}

func (s *TaskService) ListTasks(ctx context.Context, currentUserID, ownerID string) ([]models.Task, error) {
	if currentUserID != ownerID {
		return nil, forbidden()
	}
	return s.tasks.FindByUser(ctx, ownerID)
}

// CreateTask validates req against the caller's board and stores the task.
func (s *TaskService) CreateTask(ctx context.Context, currentUserID string, req models.NewTaskRequest) (models.Task, error) {
	if req.UserID != "" && req.UserID != currentUserID {
		return models.Task{}, forbidden()
	}
	req, err := req.Normalize()
	if err != nil {
		return models.Task{}, err
	}
	if err := s.requireColumn(ctx, currentUserID, req.ColumnID); err != nil {
		return models.Task{}, err
	}

	task, err := s.tasks.Insert(ctx, models.Task{
		UserID:      currentUserID,
		Title:       req.Title,
		Description: req.Description,
		Labels:      req.Labels,
		ColumnID:    req.ColumnID,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return models.Task{}, err
	}
	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s created in %s for user %s", task.ID, task.ColumnID, currentUserID)
	return task, nil
}

// UpdateTask applies patch to a task the caller owns. A column change also
// moves the task to the end of that column in the owner's saved board, unless
// the board already lists it there.
func (s *TaskService) UpdateTask(ctx context.Context, currentUserID, taskID string, patch models.TaskPatch) error {
	if _, err := s.owned(ctx, currentUserID, taskID); err != nil {
		return err
	}
	patch, err := patch.Normalize()
	if err != nil {
		return err
	}

	var layout models.Layout
	var moved bool
	if patch.ColumnID != nil {
		current, err := s.boards.GetBoard(ctx, currentUserID, currentUserID)
		if err != nil {
			return err
		}
		if layout, moved, err = placeTask(current, taskID, *patch.ColumnID); err != nil {
			return err
		}
	}

	if err := s.tasks.Update(ctx, taskID, patch); err != nil {
		return err
	}
	if moved {
		if err := s.boards.SaveBoard(ctx, currentUserID, currentUserID, layout); err != nil {
			logging.Logger.Errorf("Event ID: TASK_BOARD_SYNC_FAILED, Description: Task %s moved to %s but board of user %s not saved: %v", taskID, *patch.ColumnID, currentUserID, err)
			return err
		}
	}
	logging.Logger.Infof("Event ID: TASK_UPDATED, Description: Task %s updated by user %s", taskID, currentUserID)
	return nil
}

func (s *TaskService) DeleteTask(ctx context.Context, currentUserID, taskID string) error {
	if _, err := s.owned(ctx, currentUserID, taskID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s deleted by user %s", taskID, currentUserID)
	return nil
}

func (s *TaskService) owned(ctx context.Context, currentUserID, taskID string) (models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return models.Task{}, err
	}
	if task.UserID != currentUserID {
		logging.Logger.Warnf("Event ID: TASK_ACCESS_DENIED, Description: User %s tried to access task %s", currentUserID, taskID)
		return models.Task{}, forbidden()
	}
	return task, nil
}

func (s *TaskService) requireColumn(ctx context.Context, userID, columnID string) error {
	layout, err := s.boards.GetBoard(ctx, userID, userID)
	if err != nil {
		return err
	}
	for _, c := range layout.Columns {
		if c.ID == columnID {
			return nil
		}
	}
	return models.NewError(models.ErrNotFound, "Column not found: "+columnID)
}

func forbidden() error {
	return models.NewError(models.ErrForbidden, "Access denied")
}
