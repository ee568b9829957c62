package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/scope_auth/internal/domain"
	"github.com/Skotchmaster/scope_auth/internal/models"
)

// CreateUser inserts u and fills its id. Username and email uniqueness is
// left to the database.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Omit("Scopes").Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Duplicate(err, "User %s already exists", u.Username)
		}
		return err
	}
	return nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return getUserByID(r.DB.WithContext(ctx), id)
}

func getUserByID(tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	err := tx.Preload("Scopes", func(db *gorm.DB) *gorm.DB {
		return db.Order("scopes.id ASC")
	}).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.Missing(err, "User %d not found", id)
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Preload("Scopes", func(db *gorm.DB) *gorm.DB {
		return db.Order("scopes.id ASC")
	}).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.Missing(err, "User %s not found", username)
		}
		return nil, err
	}
	return &user, nil
}
