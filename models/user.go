package models

const (
	PermissionOwner  = 1
	PermissionMember = 2
)

type User struct {
	ID            int    `json:"u_id"`
	Email         string `json:"email"`
	PasswordHash  string `json:"-"`
	NameFirst     string `json:"name_first"`
	NameLast      string `json:"name_last"`
	Handle        string `json:"handle_str"`
	PermissionID  int    `json:"permission_id"`
	ProfileImgURL string `json:"profile_img_url,omitempty"`
}

// UserResponse is the public profile shape.
type UserResponse struct {
	ID            int    `json:"u_id"`
	Email         string `json:"email"`
	NameFirst     string `json:"name_first"`
	NameLast      string `json:"name_last"`
	Handle        string `json:"handle_str"`
	ProfileImgURL string `json:"profile_img_url,omitempty"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		NameFirst:     u.NameFirst,
		NameLast:      u.NameLast,
		Handle:        u.Handle,
		ProfileImgURL: u.ProfileImgURL,
	}
}

func (u *User) IsGlobalOwner() bool {
	return u.PermissionID == PermissionOwner
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	NameFirst string `json:"name_first"`
	NameLast  string `json:"name_last"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	UserID int    `json:"u_id"`
	Token  string `json:"token"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetReset struct {
	ResetCode   string `json:"reset_code"`
	NewPassword string `json:"new_password"`
}

type SetNameRequest struct {
	NameFirst string `json:"name_first"`
	NameLast  string `json:"name_last"`
}

type SetEmailRequest struct {
	Email string `json:"email"`
}

type SetHandleRequest struct {
	Handle string `json:"handle_str"`
}

type PermissionChangeRequest struct {
	UserID       int `json:"u_id"`
	PermissionID int `json:"permission_id"`
}
