package models

type Standup struct {
	ChannelID  int      `json:"channel_id"`
	StarterID  int      `json:"u_id"`
	TimeFinish int64    `json:"time_finish"`
	Lines      []string `json:"-"`
}

type StandupStatus struct {
	IsActive   bool   `json:"is_active"`
	TimeFinish *int64 `json:"time_finish"`
}

type StandupStartRequest struct {
	ChannelID int `json:"channel_id"`
	Length    int `json:"length"`
}

type StandupSendRequest struct {
	ChannelID int    `json:"channel_id"`
	Message   string `json:"message"`
}

type StandupStartResponse struct {
	TimeFinish int64 `json:"time_finish"`
}
