package model

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

type UpdateUserRequest struct {
	Username string `json:"username"`
}

type ChangePasswordRequest struct {
	Password string `json:"password"`
}

type SetRoleRequest struct {
	IsAdmin bool `json:"is_admin"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type UpdateGroupRequest struct {
	Name string `json:"name"`
}

type AddMemberRequest struct {
	UserID int64 `json:"user_id"`
}

// ImportRowFailure reports one rejected CSV row by line number.
type ImportRowFailure struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Created int                `json:"created"`
	Skipped int                `json:"skipped"`
	Failed  []ImportRowFailure `json:"failed,omitempty"`
}
