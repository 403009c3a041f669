package client

import (
	"context"
	"net/http"

	"taskcanvas/board"
	"taskcanvas/models"
)

var _ board.Persistence = (*Client)(nil)

func (c *Client) FetchBoard(ctx context.Context, userID string) (models.Layout, error) {
	var layout models.Layout
	if err := c.do(ctx, http.MethodGet, "/api/board/"+escape(userID), c.Token(), nil, &layout); err != nil {
		return models.Layout{}, err
	}
	if len(layout.Columns) == 0 {
		return models.DefaultLayout(), nil
	}
	return layout, nil
}

func (c *Client) FetchTasks(ctx context.Context, userID string) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+escape(userID), c.Token(), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, userID, title, description string, labels []models.Label, columnID string) (models.Task, error) {
	req := models.NewTaskRequest{UserID: userID, Title: title, Description: description, Labels: labels, ColumnID: columnID}
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", c.Token(), req, &task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (c *Client) UpdateTask(ctx context.Context, taskID string, patch models.TaskPatch) error {
	return c.do(ctx, http.MethodPut, "/api/tasks/"+escape(taskID), c.Token(), patch, nil)
}

func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+escape(taskID), c.Token(), nil, nil)
}

func (c *Client) UpdateBoard(ctx context.Context, userID string, layout models.Layout) error {
	body := struct {
		Board models.Layout `json:"board"`
	}{Board: layout}
	return c.do(ctx, http.MethodPut, "/api/board/"+escape(userID), c.Token(), body, nil)
}
