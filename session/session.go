// Package session keeps one user's board in memory and mirrors every change to
// a board.Persistence.
//
// Local state is updated before the remote calls are made. If the first remote
// call of an operation fails nothing reached the store, so the local change is
// rolled back. If a later call fails the store holds part of the change; the
// local state is kept and a *PartialFailureError is returned. Reload brings the
// local copy back in line with the store.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"taskcanvas/board"
	"taskcanvas/logging"
	"taskcanvas/models"
)

var ErrClosed = errors.New("session closed")

// PartialFailureError reports an operation whose remote side was only partly applied.
type PartialFailureError struct {
	Op        string
	Completed []string
	Failed    string
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s: %s failed after %s succeeded: %v", e.Op, e.Failed, strings.Join(e.Completed, ", "), e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }

// Session serializes operations on a single user's board.
type Session struct {
	mu     sync.Mutex
	userID string
	store  board.Persistence
	board  *board.Board
	closed bool
}

// Open loads the user's board from store. A stored layout that disagrees with
// the stored tasks is repaired locally and written back: the layout when its
// column lists changed, and the column of every task record the layout placed
// elsewhere.
func Open(ctx context.Context, store board.Persistence, userID string) (*Session, error) {
	s := &Session{userID: userID, store: store}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) load(ctx context.Context) error {
	layout, err := s.store.FetchBoard(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("fetch board: %w", err)
	}
	tasks, err := s.store.FetchTasks(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("fetch tasks: %w", err)
	}
	b, repair := board.Load(layout, tasks)
	s.board = b
	if !repair.Needed() {
		return nil
	}
	logging.Logger.Warnf("Event ID: BOARD_REPAIRED, Description: Stored board for user %s disagreed with its tasks; writing back repairs (layout: %t, tasks: %v)", s.userID, repair.Layout, repair.Moved)
	if repair.Layout {
		if err := s.store.UpdateBoard(ctx, s.userID, b.Layout()); err != nil {
			logging.Logger.Errorf("Event ID: BOARD_REPAIR_SAVE_FAILED, Description: Could not persist repaired layout for user %s: %v", s.userID, err)
		}
	}
	for _, id := range repair.Moved {
		task, _ := b.Task(id)
		patch := models.TaskPatch{ColumnID: &task.ColumnID}
		if err := s.store.UpdateTask(ctx, id, patch); err != nil {
			logging.Logger.Errorf("Event ID: BOARD_REPAIR_SAVE_FAILED, Description: Could not move task %s of user %s to %s: %v", id, s.userID, task.ColumnID, err)
		}
	}
	return nil
}

func (s *Session) UserID() string { return s.userID }

// State returns a copy of the current board for rendering.
func (s *Session) State() board.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.State()
}

// TasksIn returns the tasks of a column in display order.
func (s *Session) TasksIn(columnID string) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.TasksIn(columnID)
}

// Reload replaces local state with the store's.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.load(ctx)
}

// Close ends the session; later operations fail with ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// AddTask creates the task remotely, then appends it locally and saves the layout.
func (s *Session) AddTask(ctx context.Context, columnID, title, description string, labels []models.Label) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return models.Task{}, ErrClosed
	}
	if _, ok := s.board.Column(columnID); !ok {
		return models.Task{}, fmt.Errorf("%w: %s", board.ErrInvalidColumn, columnID)
	}
	req, err := models.NewTaskRequest{Title: title, Description: description, Labels: labels, ColumnID: columnID}.Normalize()
	if err != nil {
		return models.Task{}, err
	}

	task, err := s.store.CreateTask(ctx, s.userID, req.Title, req.Description, req.Labels, req.ColumnID)
	if err != nil {
		return models.Task{}, s.failed("add task", err)
	}
	task.ColumnID = columnID
	if err := s.board.InsertTask(task); err != nil {
		return models.Task{}, s.partial("add task", []string{"create task"}, "insert locally", err)
	}

	if err := s.store.UpdateBoard(ctx, s.userID, s.board.Layout()); err != nil {
		return task, s.partial("add task", []string{"create task"}, "update board", err)
	}
	return task, nil
}

// UpdateTask applies patch. A column change goes through the same path as a
// move to the end of the destination column.
func (s *Session) UpdateTask(ctx context.Context, taskID string, patch models.TaskPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	before, ok := s.board.Task(taskID)
	if !ok {
		return fmt.Errorf("%w: %s", board.ErrTaskNotFound, taskID)
	}

	snapshot := s.board.Clone()
	if err := s.board.UpdateTask(taskID, patch); err != nil {
		return err
	}
	after, _ := s.board.Task(taskID)

	if err := s.store.UpdateTask(ctx, taskID, patch); err != nil {
		s.board = snapshot
		return s.failed("update task", err)
	}
	if after.ColumnID != before.ColumnID {
		if err := s.store.UpdateBoard(ctx, s.userID, s.board.Layout()); err != nil {
			return s.partial("update task", []string{"update task"}, "update board", err)
		}
	}
	return nil
}

// DeleteTask removes the task. Unknown ids fail with board.ErrTaskNotFound.
func (s *Session) DeleteTask(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.board.Task(taskID); !ok {
		return fmt.Errorf("%w: %s", board.ErrTaskNotFound, taskID)
	}

	snapshot := s.board.Clone()
	if !s.board.DeleteTask(taskID) {
		return fmt.Errorf("delete task: %w: %s", board.ErrInvariant, taskID)
	}

	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		s.board = snapshot
		return s.failed("delete task", err)
	}
	if err := s.store.UpdateBoard(ctx, s.userID, s.board.Layout()); err != nil {
		return s.partial("delete task", []string{"delete task"}, "update board", err)
	}
	return nil
}

// MoveTask reorders locally, saves the layout and, when the column changed,
// the task's new column.
func (s *Session) MoveTask(ctx context.Context, taskID, sourceColumnID, destinationColumnID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	before, ok := s.board.Task(taskID)
	if !ok {
		return fmt.Errorf("%w: %s", board.ErrTaskNotFound, taskID)
	}

	snapshot := s.board.Clone()
	if err := s.board.MoveTask(taskID, sourceColumnID, destinationColumnID, index); err != nil {
		return err
	}

	if err := s.store.UpdateBoard(ctx, s.userID, s.board.Layout()); err != nil {
		s.board = snapshot
		return s.failed("move task", err)
	}
	if before.ColumnID != destinationColumnID {
		patch := models.TaskPatch{ColumnID: &destinationColumnID}
		if err := s.store.UpdateTask(ctx, taskID, patch); err != nil {
			return s.partial("move task", []string{"update board"}, "update task", err)
		}
	}
	return nil
}

// MoveTaskToPoint moves taskID into destinationColumnID at the position a
// pointer drop at pointerY resolves to. cards describes the destination
// column's rendered cards in order.
func (s *Session) MoveTaskToPoint(ctx context.Context, taskID, sourceColumnID, destinationColumnID string, pointerY float64, cards []board.CardBounds) error {
	return s.MoveTask(ctx, taskID, sourceColumnID, destinationColumnID, board.DropIndex(pointerY, cards))
}

func (s *Session) failed(op string, err error) error {
	logging.Logger.Warnf("Event ID: SESSION_ROLLBACK, Description: %s for user %s rolled back: %v", op, s.userID, err)
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Session) partial(op string, completed []string, failed string, err error) error {
	logging.Logger.Errorf("Event ID: SESSION_PARTIAL_FAILURE, Description: %s for user %s: %s failed after %v: %v", op, s.userID, failed, completed, err)
	return &PartialFailureError{Op: op, Completed: completed, Failed: failed, Err: err}
}
