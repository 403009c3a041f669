package board

import (
	"fmt"
)

// MoveTask relocates taskID to index within destinationColumnID.
//
// The id is removed from the source column first and then inserted, so for a
// move inside one column index counts positions after the removal. An index
// past the end appends; a negative index inserts at the front. The task's
// ColumnID is set to the destination even when the column does not change.
func (b *Board) MoveTask(taskID, sourceColumnID, destinationColumnID string, index int) error {
	if _, ok := b.tasks[taskID]; !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if b.columnIndex(sourceColumnID) < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidColumn, sourceColumnID)
	}
	if b.columnIndex(destinationColumnID) < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidColumn, destinationColumnID)
	}
	return b.mutate(func() error {
		return b.move(taskID, sourceColumnID, destinationColumnID, index)
	})
}

func (b *Board) move(taskID, sourceColumnID, destinationColumnID string, index int) error {
	src := b.columnIndex(sourceColumnID)
	dst := b.columnIndex(destinationColumnID)
	if src < 0 || dst < 0 {
		return ErrInvalidColumn
	}

	b.columns[src].TaskIDs = without(b.columns[src].TaskIDs, taskID)
	// A stale source column must not leave a second copy behind.
	for i := range b.columns {
		if i != src {
			b.columns[i].TaskIDs = without(b.columns[i].TaskIDs, taskID)
		}
	}
	b.columns[dst].TaskIDs = insertAt(b.columns[dst].TaskIDs, index, taskID)

	task := b.tasks[taskID]
	task.ColumnID = destinationColumnID
	b.tasks[taskID] = task
	return nil
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func insertAt(ids []string, index int, id string) []string {
	if index < 0 {
		index = 0
	}
	if index > len(ids) {
		index = len(ids)
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:index]...)
	out = append(out, id)
	return append(out, ids[index:]...)
}
