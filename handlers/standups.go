package handlers

import (
	"net/http"

	"flockr-server/board"
	"flockr-server/middleware"
	"flockr-server/models"
)

type StandupHandler struct {
	board *board.Board
}

func NewStandupHandler(b *board.Board) *StandupHandler {
	return &StandupHandler{board: b}
}

func (h *StandupHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.StandupStartRequest
	if !decode(w, r, &req) {
		return
	}

	finish, err := h.board.StandupStart(middleware.GetToken(r), req.ChannelID, req.Length)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.StandupStartResponse{TimeFinish: finish})
}

func (h *StandupHandler) Active(w http.ResponseWriter, r *http.Request) {
	channelID, ok := queryInt(w, r, "channel_id")
	if !ok {
		return
	}

	status, err := h.board.StandupActive(middleware.GetToken(r), channelID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (h *StandupHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req models.StandupSendRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.board.StandupSend(middleware.GetToken(r), req.ChannelID, req.Message); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, empty)
}
