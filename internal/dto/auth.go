package dto

// LoginRequest defines credentials for password login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued access token. The refresh token travels
// in an HTTP-only cookie.
type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   int64        `json:"expiresAt"` // unix seconds
	User        UserResponse `json:"user"`
}

// GoogleIDTokenLoginRequest defines a login using a Google-issued ID token.
type GoogleIDTokenLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}
