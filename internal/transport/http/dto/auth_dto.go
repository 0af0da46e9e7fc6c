package dto

type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SignupResponse struct {
	Username string `json:"username"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

type RefreshResponse struct {
	IsAdmin bool `json:"isAdmin"`
}

type LogoutResponse struct {
	OK bool `json:"ok"`
}

type HasUsersResponse struct {
	HasUsers bool `json:"hasUsers"`
}

type IsAdminResponse struct {
	IsAdmin bool `json:"isAdmin"`
}
