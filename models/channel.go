package models

type Channel struct {
	ID           int    `json:"channel_id"`
	Name         string `json:"name"`
	IsPublic     bool   `json:"is_public"`
	CreatorToken string `json:"-"`
}

// ChannelSummary is the entry shape of a user's membership list.
type ChannelSummary struct {
	ID   int    `json:"channel_id"`
	Name string `json:"name"`
}

// Member is a member or owner record of a channel.
type Member struct {
	UserID        int    `json:"u_id"`
	NameFirst     string `json:"name_first"`
	NameLast      string `json:"name_last"`
	ProfileImgURL string `json:"profile_img_url,omitempty"`
}

type ChannelDetails struct {
	Name         string   `json:"name"`
	OwnerMembers []Member `json:"owner_members"`
	AllMembers   []Member `json:"all_members"`
}

type CreateChannelRequest struct {
	Name     string `json:"name"`
	IsPublic bool   `json:"is_public"`
}

type ChannelRequest struct {
	ChannelID int `json:"channel_id"`
}

type ChannelUserRequest struct {
	ChannelID int `json:"channel_id"`
	UserID    int `json:"u_id"`
}
