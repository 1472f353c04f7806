package models

// Event is pushed to websocket clients of a channel.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	EventNewMessage      = "new_message"
	EventMessageUpdated  = "message_updated"
	EventMessageRemoved  = "message_removed"
	EventReactionUpdate  = "reaction_update"
	EventPinUpdate       = "pin_update"
	EventStandupStarted  = "standup_started"
	EventStandupFinished = "standup_finished"
)
