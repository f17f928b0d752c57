package handler

type registerRequest struct {
	Name     string `json:"name"     validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp"   validate:"required,len=6,numeric"`
}

type resendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type adminLoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type emailResponse struct {
	Email string `json:"email"`
}

type sessionResponse struct {
	Name   string `json:"name,omitempty"`
	UserID string `json:"userID"`
	Email  string `json:"email"`
}
