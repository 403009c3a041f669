package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"taskcanvas/middleware"
	"taskcanvas/models"
)

type BoardAPI interface {
	GetBoard(ctx context.Context, currentUserID, ownerID string) (models.Layout, error)
	SaveBoard(ctx context.Context, currentUserID, ownerID string, layout models.Layout) error
}

type BoardHandler struct {
	service BoardAPI
}

func NewBoardHandler(service BoardAPI) *BoardHandler {
	return &BoardHandler{service: service}
}

type saveBoardRequest struct {
	Board *models.Layout `json:"board"`
}

func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	layout, err := h.service.GetBoard(r.Context(), middleware.UserIDFromContext(r.Context()), mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

func (h *BoardHandler) SaveBoard(w http.ResponseWriter, r *http.Request) {
	var req saveBoardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Board == nil {
		writeError(w, r, models.NewError(models.ErrValidation, "board is required"))
		return
	}
	if err := h.service.SaveBoard(r.Context(), middleware.UserIDFromContext(r.Context()), mux.Vars(r)["userId"], *req.Board); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Board updated successfully")
}
