package models

// GoogleUserProfile is the subset of userinfo/v2/me the callback relies on.
type GoogleUserProfile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}
