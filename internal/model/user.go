package model

type RegisterRequest struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	WalletAddress string `json:"wallet_address"`
}

type RegisterResponse struct {
	User User `json:"user"`
}

type GetUserRequest struct {
	ID string `json:"id"`
}

type GetUserResponse struct {
	User User `json:"user"`
}

type GetMeRequest struct{}

type GetMeResponse struct {
	User User `json:"user"`
}

type UpdateProfileRequest struct {
	Bio    string `json:"bio"`
	Avatar string `json:"avatar"`
}

type UpdateProfileResponse struct {
	User User `json:"user"`
}

type RequestKYCRequest struct{}

type RequestKYCResponse struct {
	User User `json:"user"`
}

type GetListUserRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetListUserResponse struct {
	Users []User `json:"users"`
}

type SetKYCStatusRequest struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

type SetKYCStatusResponse struct {
	User User `json:"user"`
}

type SetUserRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type SetUserRoleResponse struct {
	User User `json:"user"`
}
