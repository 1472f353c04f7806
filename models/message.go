package models

const (
	// ReactThumbsUp is the only react kind the board accepts.
	ReactThumbsUp = 1

	MaxMessageLength = 1000
	PageSize         = 50
)

type Message struct {
	ID          int     `json:"message_id"`
	ChannelID   int     `json:"-"`
	UserID      int     `json:"u_id"`
	Content     string  `json:"message"`
	TimeCreated int64   `json:"time_created"`
	Reacts      []React `json:"reacts"`
	IsPinned    bool    `json:"is_pinned"`
}

// React groups the users who reacted to a message with one react kind.
type React struct {
	ReactID           int   `json:"react_id"`
	UserIDs           []int `json:"u_ids"`
	IsThisUserReacted bool  `json:"is_this_user_reacted"`
}

// PendingMessage is a send-later message that has an id but is not yet
// visible in its channel.
type PendingMessage struct {
	ID        int    `json:"message_id"`
	ChannelID int    `json:"channel_id"`
	UserID    int    `json:"u_id"`
	Content   string `json:"message"`
	DeliverAt int64  `json:"time_sent"`
}

type MessagePage struct {
	Messages []Message `json:"messages"`
	Start    int       `json:"start"`
	End      int       `json:"end"`
}

type SendMessageRequest struct {
	ChannelID int    `json:"channel_id"`
	Message   string `json:"message"`
}

type SendLaterRequest struct {
	ChannelID int    `json:"channel_id"`
	Message   string `json:"message"`
	TimeSent  int64  `json:"time_sent"`
}

type MessageIDResponse struct {
	MessageID int `json:"message_id"`
}

type EditMessageRequest struct {
	MessageID int    `json:"message_id"`
	Message   string `json:"message"`
}

type MessageRequest struct {
	MessageID int `json:"message_id"`
}

type ReactRequest struct {
	MessageID int `json:"message_id"`
	ReactID   int `json:"react_id"`
}
