package handlers

import (
	"net/http"

	"flockr-server/board"
	"flockr-server/middleware"
	"flockr-server/models"
)

type MessageHandler struct {
	board *board.Board
}

func NewMessageHandler(b *board.Board) *MessageHandler {
	return &MessageHandler{board: b}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if !decode(w, r, &req) {
		return
	}

	id, err := h.board.Send(middleware.GetToken(r), req.ChannelID, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MessageIDResponse{MessageID: id})
}

func (h *MessageHandler) SendLater(w http.ResponseWriter, r *http.Request) {
	var req models.SendLaterRequest
	if !decode(w, r, &req) {
		return
	}

	id, err := h.board.SendLater(middleware.GetToken(r), req.ChannelID, req.Message, req.TimeSent)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MessageIDResponse{MessageID: id})
}

func (h *MessageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req models.EditMessageRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, h.board.Edit(middleware.GetToken(r), req.MessageID, req.Message))
}

func (h *MessageHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req models.MessageRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, h.board.Remove(middleware.GetToken(r), req.MessageID))
}

func (h *MessageHandler) React(w http.ResponseWriter, r *http.Request) {
	var req models.ReactRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, h.board.React(middleware.GetToken(r), req.MessageID, req.ReactID))
}

func (h *MessageHandler) Unreact(w http.ResponseWriter, r *http.Request) {
	var req models.ReactRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, h.board.Unreact(middleware.GetToken(r), req.MessageID, req.ReactID))
}

func (h *MessageHandler) Pin(w http.ResponseWriter, r *http.Request) {
	var req models.MessageRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, h.board.Pin(middleware.GetToken(r), req.MessageID))
}

func (h *MessageHandler) Unpin(w http.ResponseWriter, r *http.Request) {
	var req models.MessageRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, h.board.Unpin(middleware.GetToken(r), req.MessageID))
}

func (h *MessageHandler) respond(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, empty)
}
