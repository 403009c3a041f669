package models

type Column struct {
	ID      string   `json:"id" bson:"id"`
	Title   string   `json:"title" bson:"title"`
	TaskIDs []string `json:"taskIds" bson:"taskIds"`
}

// Layout is the persisted column structure of a board.
type Layout struct {
	Columns []Column `json:"columns" bson:"columns"`
}

// DefaultLayout returns the columns every new board starts with.
func DefaultLayout() Layout {
	return Layout{Columns: []Column{
		{ID: "column-1", Title: "To Do", TaskIDs: []string{}},
		{ID: "column-2", Title: "In Progress", TaskIDs: []string{}},
		{ID: "column-3", Title: "Done", TaskIDs: []string{}},
	}}
}

// Clone returns a deep copy.
func (l Layout) Clone() Layout {
	cols := make([]Column, len(l.Columns))
	for i, c := range l.Columns {
		cols[i] = Column{ID: c.ID, Title: c.Title, TaskIDs: append([]string{}, c.TaskIDs...)}
	}
	return Layout{Columns: cols}
}

// Validate checks structural soundness: named columns, unique column ids and
// no task id listed twice.
func (l Layout) Validate() error {
	if len(l.Columns) == 0 {
		return NewError(ErrValidation, "board must have at least one column")
	}
	cols := make(map[string]bool, len(l.Columns))
	tasks := make(map[string]string)
	for _, c := range l.Columns {
		if c.ID == "" || c.Title == "" {
			return NewError(ErrValidation, "column id and title are required")
		}
		if cols[c.ID] {
			return NewError(ErrValidation, "duplicate column id "+c.ID)
		}
		cols[c.ID] = true
		for _, id := range c.TaskIDs {
			if id == "" {
				return NewError(ErrValidation, "empty task id in column "+c.ID)
			}
			if other, ok := tasks[id]; ok {
				return NewError(ErrValidation, "task "+id+" listed in both "+other+" and "+c.ID)
			}
			tasks[id] = c.ID
		}
	}
	return nil
}
