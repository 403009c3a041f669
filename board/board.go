// Package board holds the in-memory kanban aggregate: ordered columns of task
// ids plus the task records they reference.
//
// Every mutation either succeeds and leaves the board satisfying Validate, or
// fails and leaves the board exactly as it was.
package board

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskcanvas/models"
)

var (
	ErrTaskNotFound  = models.NewError(models.ErrNotFound, "task not found")
	ErrInvalidColumn = models.NewError(models.ErrNotFound, "column not found")
	ErrDuplicateTask = models.NewError(models.ErrConflict, "task already exists")
	ErrInvariant     = errors.New("board invariant violated")
)

// Board is not safe for concurrent use.
type Board struct {
	columns []models.Column
	tasks   map[string]models.Task

	newID func() string
	now   func() time.Time
}

// State is the serializable form of a board.
type State struct {
	Columns []models.Column        `json:"columns"`
	Tasks   map[string]models.Task `json:"tasks"`
}

// Option customizes a Board.
type Option func(*Board)

// WithIDGenerator replaces the task id source.
func WithIDGenerator(fn func() string) Option {
	return func(b *Board) { b.newID = fn }
}

// WithClock replaces the creation timestamp source.
func WithClock(fn func() time.Time) Option {
	return func(b *Board) { b.now = fn }
}

// New returns a board with the default empty columns.
func New(opts ...Option) *Board {
	b, _ := Load(models.DefaultLayout(), nil, opts...)
	return b
}

// Repair lists what Load changed to reconcile a stored layout with the stored
// tasks.
type Repair struct {
	// Layout is set when the loaded column lists differ from the stored ones.
	Layout bool
	// Moved holds the ids of tasks whose ColumnID was rewritten, in the order
	// they were placed.
	Moved []string
}

// Needed reports whether the store disagrees with the loaded board.
func (r Repair) Needed() bool { return r.Layout || len(r.Moved) > 0 }

// Load builds a board from a stored layout and task list, which are persisted
// separately and may disagree. Column ids pointing at missing tasks are
// dropped, duplicates keep their first position, a task listed in another
// column than its record names takes the listed column, and tasks not listed
// anywhere are appended to their own column (or the first column when theirs
// is gone).
func Load(layout models.Layout, tasks []models.Task, opts ...Option) (b *Board, repair Repair) {
	b = &Board{
		tasks: make(map[string]models.Task, len(tasks)),
		newID: func() string { return "task-" + uuid.NewString() },
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(b)
	}

	if len(layout.Columns) == 0 {
		layout = models.DefaultLayout()
		repair.Layout = true
	}
	for _, t := range tasks {
		b.tasks[t.ID] = cloneTask(t)
	}

	placed := make(map[string]bool, len(tasks))
	seenCols := make(map[string]bool, len(layout.Columns))
	for _, c := range layout.Columns {
		if seenCols[c.ID] {
			repair.Layout = true
			continue
		}
		seenCols[c.ID] = true
		col := models.Column{ID: c.ID, Title: c.Title, TaskIDs: make([]string, 0, len(c.TaskIDs))}
		for _, id := range c.TaskIDs {
			t, ok := b.tasks[id]
			if !ok || placed[id] {
				repair.Layout = true
				continue
			}
			placed[id] = true
			if t.ColumnID != c.ID {
				t.ColumnID = c.ID
				b.tasks[id] = t
				repair.Moved = append(repair.Moved, id)
			}
			col.TaskIDs = append(col.TaskIDs, id)
		}
		b.columns = append(b.columns, col)
	}

	for _, t := range tasks {
		if placed[t.ID] {
			continue
		}
		placed[t.ID] = true
		repair.Layout = true
		idx := b.columnIndex(t.ColumnID)
		if idx < 0 {
			idx = 0
			repair.Moved = append(repair.Moved, t.ID)
		}
		stored := b.tasks[t.ID]
		stored.ColumnID = b.columns[idx].ID
		b.tasks[t.ID] = stored
		b.columns[idx].TaskIDs = append(b.columns[idx].TaskIDs, t.ID)
	}
	return b, repair
}

// Columns returns a copy of the columns in display order.
func (b *Board) Columns() []models.Column {
	return b.Layout().Columns
}

// Layout returns a copy of the column structure.
func (b *Board) Layout() models.Layout {
	return models.Layout{Columns: b.columns}.Clone()
}

func (b *Board) Column(id string) (models.Column, bool) {
	i := b.columnIndex(id)
	if i < 0 {
		return models.Column{}, false
	}
	c := b.columns[i]
	return models.Column{ID: c.ID, Title: c.Title, TaskIDs: append([]string{}, c.TaskIDs...)}, true
}

func (b *Board) Task(id string) (models.Task, bool) {
	t, ok := b.tasks[id]
	if !ok {
		return models.Task{}, false
	}
	return cloneTask(t), true
}

// TasksIn returns the tasks of a column in display order.
func (b *Board) TasksIn(columnID string) []models.Task {
	i := b.columnIndex(columnID)
	if i < 0 {
		return nil
	}
	out := make([]models.Task, 0, len(b.columns[i].TaskIDs))
	for _, id := range b.columns[i].TaskIDs {
		out = append(out, cloneTask(b.tasks[id]))
	}
	return out
}

func (b *Board) Len() int { return len(b.tasks) }

// Position reports the column and index currently holding taskID.
func (b *Board) Position(taskID string) (columnID string, index int, ok bool) {
	for _, c := range b.columns {
		for i, id := range c.TaskIDs {
			if id == taskID {
				return c.ID, i, true
			}
		}
	}
	return "", -1, false
}

func (b *Board) State() State {
	tasks := make(map[string]models.Task, len(b.tasks))
	for id, t := range b.tasks {
		tasks[id] = cloneTask(t)
	}
	return State{Columns: b.Columns(), Tasks: tasks}
}

// Clone returns an independent copy sharing the id generator and clock.
func (b *Board) Clone() *Board {
	c := &Board{
		columns: models.Layout{Columns: b.columns}.Clone().Columns,
		tasks:   make(map[string]models.Task, len(b.tasks)),
		newID:   b.newID,
		now:     b.now,
	}
	for id, t := range b.tasks {
		c.tasks[id] = cloneTask(t)
	}
	return c
}

// AddTask creates a task at the end of columnID.
func (b *Board) AddTask(columnID, title, description string, labels []models.Label) (models.Task, error) {
	if b.columnIndex(columnID) < 0 {
		return models.Task{}, fmt.Errorf("%w: %s", ErrInvalidColumn, columnID)
	}
	req, err := models.NewTaskRequest{Title: title, Description: description, Labels: labels, ColumnID: columnID}.Normalize()
	if err != nil {
		return models.Task{}, err
	}

	id := b.newID()
	for b.hasTask(id) {
		id = b.newID()
	}
	task := models.Task{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Labels:      req.Labels,
		ColumnID:    columnID,
		CreatedAt:   b.now(),
	}
	if err := b.InsertTask(task); err != nil {
		return models.Task{}, err
	}
	return cloneTask(task), nil
}

// InsertTask adds an already identified task (for example one created by a
// remote store) at the end of task.ColumnID.
func (b *Board) InsertTask(task models.Task) error {
	if task.ID == "" {
		return models.NewError(models.ErrValidation, "task id is required")
	}
	if _, exists := b.tasks[task.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, task.ID)
	}
	ci := b.columnIndex(task.ColumnID)
	if ci < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidColumn, task.ColumnID)
	}
	return b.mutate(func() error {
		b.tasks[task.ID] = cloneTask(task)
		b.columns[ci].TaskIDs = append(b.columns[ci].TaskIDs, task.ID)
		return nil
	})
}

// UpdateTask merges patch into the task. A column change is carried out as a
// move to the end of the destination column so column lists stay in sync.
func (b *Board) UpdateTask(taskID string, patch models.TaskPatch) error {
	task, ok := b.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	patch, err := patch.Normalize()
	if err != nil {
		return err
	}
	var dest string
	if patch.ColumnID != nil && *patch.ColumnID != task.ColumnID {
		dest = *patch.ColumnID
		if b.columnIndex(dest) < 0 {
			return fmt.Errorf("%w: %s", ErrInvalidColumn, dest)
		}
	}
	patch.ColumnID = nil

	return b.mutate(func() error {
		patch.Apply(&task)
		b.tasks[taskID] = task
		if dest == "" {
			return nil
		}
		return b.move(taskID, task.ColumnID, dest, len(b.columns[b.columnIndex(dest)].TaskIDs))
	})
}

// DeleteTask removes the task and its id from its column. Unknown ids leave
// the board untouched and report false, as does a removal the board could not
// apply consistently.
func (b *Board) DeleteTask(taskID string) bool {
	if _, ok := b.tasks[taskID]; !ok {
		return false
	}
	return b.mutate(func() error {
		delete(b.tasks, taskID)
		for i := range b.columns {
			b.columns[i].TaskIDs = without(b.columns[i].TaskIDs, taskID)
		}
		return nil
	}) == nil
}

func (b *Board) hasTask(id string) bool {
	_, ok := b.tasks[id]
	return ok
}

func (b *Board) columnIndex(id string) int {
	for i, c := range b.columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// mutate runs fn and restores the previous contents if fn fails or leaves the
// board inconsistent.
func (b *Board) mutate(fn func() error) error {
	saved := b.Clone()
	err := fn()
	if err == nil {
		err = b.Validate()
	}
	if err != nil {
		b.columns, b.tasks = saved.columns, saved.tasks
		return err
	}
	return nil
}

func cloneTask(t models.Task) models.Task {
	t.Labels = append([]models.Label{}, t.Labels...)
	return t
}
