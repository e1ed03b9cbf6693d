package dto

// RegisterRequest carries the registration payload. Field-level rules are
// checked in the account service so every failing field is reported at
// once; binding stays permissive here.
type RegisterRequest struct {
	Name                 string  `json:"name"`
	Email                string  `json:"email"`
	StudentID            string  `json:"student_id"`
	Password             string  `json:"password"`
	PasswordConfirmation string  `json:"password_confirmation"`
	Gender               *string `json:"gender,omitempty"`
	Level                *int    `json:"level,omitempty"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned on successful register and login.
type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// MessageResponse is a bare success/message pair (logout and friends).
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
