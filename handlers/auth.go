package handlers

import (
	"net/http"

	"flockr-server/board"
	"flockr-server/middleware"
	"flockr-server/models"
)

type AuthHandler struct {
	board *board.Board
}

func NewAuthHandler(b *board.Board) *AuthHandler {
	return &AuthHandler{board: b}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.board.Register(req.Email, req.Password, req.NameFirst, req.NameLast)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.board.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Logout never fails; a stale or missing token just reports false.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ok := false
	if token, err := middleware.BearerToken(r); err == nil {
		ok = h.board.Logout(token)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"is_success": ok})
}

func (h *AuthHandler) PasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordResetRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.board.PasswordResetRequest(req.Email); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, empty)
}

func (h *AuthHandler) PasswordResetReset(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordResetReset
	if !decode(w, r, &req) {
		return
	}

	if err := h.board.PasswordResetReset(req.ResetCode, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, empty)
}
