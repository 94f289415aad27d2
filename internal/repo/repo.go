// Package repo is the persistence layer of the auth core: account lookups
// and the refresh-token ledger. CRUD handlers outside the auth core talk
// to gorm directly.
package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/quizhub/quiz_platform/internal/models"
)

var ErrNotFound = errors.New("record not found")

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) FindAccountByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindAccountByLogin resolves a login identifier that may be either a
// username or an email. Empty arguments are skipped. Emails are stored
// lowercase, so the email side of the lookup is case-insensitive.
func (r *GormRepo) FindAccountByLogin(ctx context.Context, username, email string) (*models.Account, error) {
	email = strings.ToLower(email)
	q := r.DB.WithContext(ctx)
	switch {
	case username != "" && email != "":
		q = q.Where("username = ? OR email = ?", username, email)
	case username != "":
		q = q.Where("username = ?", username)
	case email != "":
		q = q.Where("email = ?", email)
	default:
		return nil, ErrNotFound
	}

	var account models.Account
	if err := q.First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *GormRepo) CreateAccount(ctx context.Context, a *models.Account) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *GormRepo) UpdatePassword(ctx context.Context, accountID, passwordHash string) error {
	result := r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
