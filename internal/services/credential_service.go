package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/franciscosanchezn/calassist-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrCredentialNotFound is returned when a user has no stored Google credential
var ErrCredentialNotFound = errors.New("credential_not_found")

// TokenGrant is the token material handed back by Google on exchange or refresh
type TokenGrant struct {
	AccessToken  string
	RefreshToken string // Empty when Google did not issue a new one
	ExpiryDate   time.Time
	Scopes       string // Empty leaves the stored scopes untouched on update
}

// CredentialService persists one Google credential record per user
type CredentialService interface {
	// GetByUserID returns the user's credential or ErrCredentialNotFound
	GetByUserID(ctx context.Context, userID string) (*models.GoogleAuthToken, error)
	// Exists reports whether the user has connected Google Calendar
	Exists(ctx context.Context, userID string) (bool, error)
	// Upsert inserts the user's credential or updates the existing one in place
	Upsert(ctx context.Context, userID string, grant TokenGrant) (*models.GoogleAuthToken, error)
	// CompareAndSwapAccessToken stores a refreshed token only if the stored access token is still previousAccessToken
	CompareAndSwapAccessToken(ctx context.Context, userID, previousAccessToken string, grant TokenGrant) (bool, error)
	// Delete removes the user's credential; deleting a missing record is not an error
	Delete(ctx context.Context, userID string) error
}

type credentialService struct {
	db *gorm.DB
}

// NewCredentialService creates a new instance of CredentialService
func NewCredentialService(db *gorm.DB) CredentialService {
	return &credentialService{db: db}
}

func (s *credentialService) GetByUserID(ctx context.Context, userID string) (*models.GoogleAuthToken, error) {
	var token models.GoogleAuthToken
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredentialNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (s *credentialService) Exists(ctx context.Context, userID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.GoogleAuthToken{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *credentialService) Upsert(ctx context.Context, userID string, grant TokenGrant) (*models.GoogleAuthToken, error) {
	token, err := s.upsert(ctx, userID, grant)
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent callback inserted first; the retry takes the update branch.
		token, err = s.upsert(ctx, userID, grant)
	}
	return token, err
}

func (s *credentialService) upsert(ctx context.Context, userID string, grant TokenGrant) (*models.GoogleAuthToken, error) {
	var token models.GoogleAuthToken
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&token).Error
		switch {
		case err == nil:
			token.AccessToken = grant.AccessToken
			token.ExpiryDate = grant.ExpiryDate.UTC()
			if grant.RefreshToken != "" {
				token.RefreshToken = grant.RefreshToken
			}
			token.Scopes = grant.Scopes
			return tx.Save(&token).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			token = models.GoogleAuthToken{
				ID:           uuid.New().String(),
				UserID:       userID,
				AccessToken:  grant.AccessToken,
				RefreshToken: grant.RefreshToken,
				ExpiryDate:   grant.ExpiryDate.UTC(),
				Scopes:       grant.Scopes,
			}
			return tx.Create(&token).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, fmt.Errorf("upsert credential for user %s: %w", userID, err)
	}
	return &token, nil
}

func (s *credentialService) CompareAndSwapAccessToken(ctx context.Context, userID, previousAccessToken string, grant TokenGrant) (bool, error) {
	updates := map[string]interface{}{
		"access_token": grant.AccessToken,
		"expiry_date":  grant.ExpiryDate.UTC(),
		"updated_at":   time.Now().UTC(),
	}
	if grant.RefreshToken != "" {
		updates["refresh_token"] = grant.RefreshToken
	}
	if grant.Scopes != "" {
		updates["scopes"] = grant.Scopes
	}

	result := s.db.WithContext(ctx).Model(&models.GoogleAuthToken{}).
		Where("user_id = ? AND access_token = ?", userID, previousAccessToken).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *credentialService) Delete(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.GoogleAuthToken{}).Error
}
