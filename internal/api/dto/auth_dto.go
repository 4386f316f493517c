package dto

// SendCodeRequest payload for verify-code delivery.
type SendCodeRequest struct {
	Phone string `json:"phone"`
}

// RegisterRequest payload for new members.
type RegisterRequest struct {
	Phone         string `json:"phone"`
	Nickname      string `json:"nickname"`
	Password      string `json:"password"`
	StudentID     string `json:"student_id"`
	CampusCardURL string `json:"campus_card_url"`
	VerifyCode    string `json:"verify_code"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Phone      string `json:"phone"`
	Password   string `json:"password"`
	VerifyCode string `json:"verify_code"`
}

// RefreshRequest payload for refresh-credential rotation.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest payload for logout.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LoginResponse returns issued credentials plus identity fields.
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	UserID       string `json:"user_id,omitempty"`
	Nickname     string `json:"nickname,omitempty"`
	Role         string `json:"role,omitempty"`
}
