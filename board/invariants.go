package board

import "fmt"

// Validate reports the first broken consistency rule, wrapped in ErrInvariant:
// column ids are unique, every listed id names a task whose ColumnID is that
// column, and every task is listed exactly once.
func (b *Board) Validate() error {
	cols := make(map[string]bool, len(b.columns))
	listed := make(map[string]string, len(b.tasks))
	for _, c := range b.columns {
		if cols[c.ID] {
			return fmt.Errorf("%w: duplicate column %s", ErrInvariant, c.ID)
		}
		cols[c.ID] = true
		for _, id := range c.TaskIDs {
			t, ok := b.tasks[id]
			if !ok {
				return fmt.Errorf("%w: column %s lists unknown task %s", ErrInvariant, c.ID, id)
			}
			if prev, dup := listed[id]; dup {
				return fmt.Errorf("%w: task %s listed in %s and %s", ErrInvariant, id, prev, c.ID)
			}
			listed[id] = c.ID
			if t.ColumnID != c.ID {
				return fmt.Errorf("%w: task %s has column %s but is listed in %s", ErrInvariant, id, t.ColumnID, c.ID)
			}
		}
	}
	for id := range b.tasks {
		if _, ok := listed[id]; !ok {
			return fmt.Errorf("%w: task %s is not listed in any column", ErrInvariant, id)
		}
	}
	return nil
}
