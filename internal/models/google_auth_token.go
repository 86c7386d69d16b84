package models

import (
	"time"
)

// GoogleAuthToken is the OAuth credential set stored for one user.
type GoogleAuthToken struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       string    `gorm:"uniqueIndex;not null;size:191" json:"user_id"`
	AccessToken  string    `gorm:"type:text;not null" json:"-"`
	RefreshToken string    `gorm:"type:text" json:"-"`
	ExpiryDate   time.Time `gorm:"not null" json:"expiry_date"`
	Scopes       string    `gorm:"type:text" json:"scopes"` // Space-separated, as granted by Google
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (GoogleAuthToken) TableName() string {
	return "google_auth_tokens"
}

// IsExpired reports whether the access token must be treated as invalid at now.
// Tokens expiring within skew count as already expired.
func (t *GoogleAuthToken) IsExpired(now time.Time, skew time.Duration) bool {
	return !t.ExpiryDate.After(now.Add(skew))
}
