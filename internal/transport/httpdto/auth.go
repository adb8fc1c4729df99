package httpdto

// RegisterRequest is used for POST /user/register
type RegisterRequest struct {
	FullName        string `json:"fullName"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Gender          string `json:"gender"`
}

// LoginRequest is used for POST /user/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
