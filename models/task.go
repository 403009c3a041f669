package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Labels      []Label   `json:"labels"`
	ColumnID    string    `json:"columnId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewTaskRequest is the body of a task creation call.
type NewTaskRequest struct {
	UserID      string  `json:"userId,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Labels      []Label `json:"labels"`
	ColumnID    string  `json:"columnId"`
}

// Normalize trims text fields and validates title, labels and column.
func (r NewTaskRequest) Normalize() (NewTaskRequest, error) {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.ColumnID = strings.TrimSpace(r.ColumnID)
	if r.Title == "" {
		return r, NewError(ErrValidation, "title is required")
	}
	if r.ColumnID == "" {
		return r, NewError(ErrValidation, "columnId is required")
	}
	labels, err := NormalizeLabels(r.Labels)
	if err != nil {
		return r, err
	}
	r.Labels = labels
	return r, nil
}

// TaskPatch enumerates the mutable task fields. A nil field is left unchanged.
type TaskPatch struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Labels      *[]Label `json:"labels,omitempty"`
	ColumnID    *string  `json:"columnId,omitempty"`
}

var immutableTaskFields = map[string]bool{"id": true, "_id": true, "createdAt": true, "userId": true}

var patchFields = map[string]bool{"title": true, "description": true, "labels": true, "columnId": true}

// DecodeTaskPatch parses a JSON patch object, rejecting immutable and unknown keys.
func DecodeTaskPatch(data []byte) (TaskPatch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return TaskPatch{}, NewError(ErrValidation, "invalid request payload")
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if immutableTaskFields[k] {
			return TaskPatch{}, NewError(ErrValidation, fmt.Sprintf("field %q is immutable", k))
		}
		if !patchFields[k] {
			return TaskPatch{}, NewError(ErrValidation, fmt.Sprintf("unknown field %q", k))
		}
	}

	var p TaskPatch
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return TaskPatch{}, NewError(ErrValidation, "invalid request payload")
	}
	return p.Normalize()
}

// Normalize trims supplied text fields and validates them.
func (p TaskPatch) Normalize() (TaskPatch, error) {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return p, NewError(ErrValidation, "title cannot be empty")
		}
		p.Title = &title
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		p.Description = &desc
	}
	if p.Labels != nil {
		labels, err := NormalizeLabels(*p.Labels)
		if err != nil {
			return p, err
		}
		p.Labels = &labels
	}
	if p.ColumnID != nil {
		col := strings.TrimSpace(*p.ColumnID)
		if col == "" {
			return p, NewError(ErrValidation, "columnId cannot be empty")
		}
		p.ColumnID = &col
	}
	return p, nil
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Labels == nil && p.ColumnID == nil
}

// Apply merges the supplied fields into t. ColumnID is applied as is; keeping
// column lists in sync is the caller's job.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Labels != nil {
		t.Labels = append([]Label(nil), (*p.Labels)...)
	}
	if p.ColumnID != nil {
		t.ColumnID = *p.ColumnID
	}
}
