package handlers

import (
	"net/http"

	"flockr-server/board"
	"flockr-server/middleware"
	"flockr-server/models"
)

type ChannelHandler struct {
	board *board.Board
}

func NewChannelHandler(b *board.Board) *ChannelHandler {
	return &ChannelHandler{board: b}
}

func (h *ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChannelRequest
	if !decode(w, r, &req) {
		return
	}

	id, err := h.board.CreateChannel(middleware.GetToken(r), req.Name, req.IsPublic)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"channel_id": id})
}

func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	channels, err := h.board.ListChannels(middleware.GetToken(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"channels": channels})
}

func (h *ChannelHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	channels, err := h.board.ListAllChannels(middleware.GetToken(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"channels": channels})
}

func (h *ChannelHandler) Details(w http.ResponseWriter, r *http.Request) {
	channelID, ok := queryInt(w, r, "channel_id")
	if !ok {
		return
	}

	details, err := h.board.ChannelDetails(middleware.GetToken(r), channelID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

func (h *ChannelHandler) Messages(w http.ResponseWriter, r *http.Request) {
	channelID, ok := queryInt(w, r, "channel_id")
	if !ok {
		return
	}
	start, ok := queryInt(w, r, "start")
	if !ok {
		return
	}

	page, err := h.board.Messages(middleware.GetToken(r), channelID, start)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *ChannelHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req models.ChannelUserRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, h.board.Invite(middleware.GetToken(r), req.ChannelID, req.UserID))
}

func (h *ChannelHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req models.ChannelRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, h.board.Join(middleware.GetToken(r), req.ChannelID))
}

func (h *ChannelHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var req models.ChannelRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, h.board.Leave(middleware.GetToken(r), req.ChannelID))
}

func (h *ChannelHandler) AddOwner(w http.ResponseWriter, r *http.Request) {
	var req models.ChannelUserRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, h.board.AddOwner(middleware.GetToken(r), req.ChannelID, req.UserID))
}

func (h *ChannelHandler) RemoveOwner(w http.ResponseWriter, r *http.Request) {
	var req models.ChannelUserRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, h.board.RemoveOwner(middleware.GetToken(r), req.ChannelID, req.UserID))
}

func (h *ChannelHandler) respond(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, empty)
}
