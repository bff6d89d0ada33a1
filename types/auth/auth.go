package auth

// LoginRequest carries username/password credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RequestOTPRequest asks for a one-time login code by email.
type RequestOTPRequest struct {
	Email string `json:"email"`
}

// VerifyOTPRequest completes a passwordless login.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}
