package handlers

import (
	"net/http"

	"flockr-server/board"
	"flockr-server/middleware"
	"flockr-server/models"
)

type UserHandler struct {
	board *board.Board
}

func NewUserHandler(b *board.Board) *UserHandler {
	return &UserHandler{board: b}
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryInt(w, r, "u_id")
	if !ok {
		return
	}

	user, err := h.board.UserProfile(middleware.GetToken(r), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *UserHandler) SetName(w http.ResponseWriter, r *http.Request) {
	var req models.SetNameRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, h.board.SetName(middleware.GetToken(r), req.NameFirst, req.NameLast))
}

func (h *UserHandler) SetEmail(w http.ResponseWriter, r *http.Request) {
	var req models.SetEmailRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, h.board.SetEmail(middleware.GetToken(r), req.Email))
}

func (h *UserHandler) SetHandle(w http.ResponseWriter, r *http.Request) {
	var req models.SetHandleRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, h.board.SetHandle(middleware.GetToken(r), req.Handle))
}

func (h *UserHandler) All(w http.ResponseWriter, r *http.Request) {
	users, err := h.board.UsersAll(middleware.GetToken(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	messages, err := h.board.Search(middleware.GetToken(r), r.URL.Query().Get("query_str"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

func (h *UserHandler) respond(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, empty)
}
