package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/quizhub/quiz_platform/internal/models"
)

// StoreRefreshToken persists a freshly issued refresh token. Token strings
// are unique, so two active rows for the same string cannot coexist.
func (r *GormRepo) StoreRefreshToken(ctx context.Context, accountID, token string, expiresAt time.Time) (*models.RefreshToken, error) {
	row := models.RefreshToken{
		AccountID: accountID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindActiveRefreshToken returns the row only while it is unrevoked and
// unexpired; revoked, expired and unknown tokens behave as not-found.
func (r *GormRepo) FindActiveRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var row models.RefreshToken
	err := r.DB.WithContext(ctx).
		Where("token = ? AND is_revoked = ? AND expires_at > ?", token, false, time.Now()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// RevokeRefreshToken marks one token revoked. Revoking an already-revoked
// or unknown token affects zero rows; the caller treats that as not-found.
func (r *GormRepo) RevokeRefreshToken(ctx context.Context, token string) (int64, error) {
	result := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ? AND is_revoked = ?", token, false).
		Update("is_revoked", true)
	return result.RowsAffected, result.Error
}

// RevokeAllForAccount kills every active session continuation for the
// account. Invoked on password change so old sessions do not survive a
// credential rotation.
func (r *GormRepo) RevokeAllForAccount(ctx context.Context, accountID string) (int64, error) {
	result := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("account_id = ? AND is_revoked = ?", accountID, false).
		Update("is_revoked", true)
	return result.RowsAffected, result.Error
}
