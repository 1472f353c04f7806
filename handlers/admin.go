package handlers

import (
	"log"
	"net/http"

	"flockr-server/board"
	"flockr-server/middleware"
	"flockr-server/models"
)

type AdminHandler struct {
	board *board.Board
}

func NewAdminHandler(b *board.Board) *AdminHandler {
	return &AdminHandler{board: b}
}

func (h *AdminHandler) PermissionChange(w http.ResponseWriter, r *http.Request) {
	var req models.PermissionChangeRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.board.PermissionChange(middleware.GetToken(r), req.UserID, req.PermissionID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, empty)
}

// Clear wipes the whole board. It exists for test harnesses and is not
// behind authentication.
func (h *AdminHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.board.Reset(); err != nil {
		writeError(w, r, err)
		return
	}

	log.Printf("[HTTP] Board cleared by %s", r.RemoteAddr)
	writeJSON(w, http.StatusOK, empty)
}
