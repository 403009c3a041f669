package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"taskcanvas/middleware"
	"taskcanvas/models"
)

type TaskAPI interface {
	ListTasks(ctx context.Context, currentUserID, ownerID string) ([]models.Task, error)
	CreateTask(ctx context.Context, currentUserID string, req models.NewTaskRequest) (models.Task, error)
	UpdateTask(ctx context.Context, currentUserID, taskID string, patch models.TaskPatch) error
	DeleteTask(ctx context.Context, currentUserID, taskID string) error
}

type TaskHandler struct {
	service TaskAPI
}

func NewTaskHandler(service TaskAPI) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	tasks, err := h.service.ListTasks(r.Context(), middleware.UserIDFromContext(r.Context()), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.NewTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	task, err := h.service.CreateTask(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask accepts only title, description, labels and columnId.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, models.NewError(models.ErrValidation, "invalid request payload"))
		return
	}
	patch, err := models.DecodeTaskPatch(body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	taskID := mux.Vars(r)["id"]
	if err := h.service.UpdateTask(r.Context(), middleware.UserIDFromContext(r.Context()), taskID, patch); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Task updated successfully")
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]
	if err := h.service.DeleteTask(r.Context(), middleware.UserIDFromContext(r.Context()), taskID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Task deleted successfully")
}
