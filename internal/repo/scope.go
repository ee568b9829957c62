package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/scope_auth/internal/domain"
	"github.com/Skotchmaster/scope_auth/internal/models"
)

// ErrNotAssigned is the internal cause behind a Missing error returned by
// UnassignScope when both user and scope exist but are not linked.
var ErrNotAssigned = errors.New("scope not assigned to user")

func (r *GormRepo) CreateScope(ctx context.Context, name string) (*models.Scope, error) {
	scope := models.Scope{Name: name}
	if err := r.DB.WithContext(ctx).Create(&scope).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Duplicate(err, "Scope %s already exists", name)
		}
		return nil, err
	}
	return &scope, nil
}

func (r *GormRepo) GetScope(ctx context.Context, id uint) (*models.Scope, error) {
	return getScope(r.DB.WithContext(ctx), id)
}

func getScope(tx *gorm.DB, id uint) (*models.Scope, error) {
	var scope models.Scope
	if err := tx.First(&scope, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.Missing(err, "Scope %d not found", id)
		}
		return nil, err
	}
	return &scope, nil
}

func (r *GormRepo) ListScopes(ctx context.Context) ([]models.Scope, error) {
	scopes := make([]models.Scope, 0)
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&scopes).Error; err != nil {
		return nil, err
	}
	return scopes, nil
}

// DeleteScope removes the scope and every assignment of it in one
// transaction.
func (r *GormRepo) DeleteScope(ctx context.Context, id uint) (*models.Scope, error) {
	var deleted *models.Scope
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope, err := getScope(tx, id)
		if err != nil {
			return err
		}

		if err := tx.Where("scope_id = ?", id).Delete(&models.UserScope{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Scope{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.Missing(gorm.ErrRecordNotFound, "Scope %d not found", id)
		}

		deleted = scope
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// AssignScope links the user and the scope. A repeated assignment is caught
// from the composite primary key, not checked beforehand.
func (r *GormRepo) AssignScope(ctx context.Context, userID, scopeID uint) (*models.User, error) {
	var user *models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getUserByID(tx, userID); err != nil {
			return err
		}
		if _, err := getScope(tx, scopeID); err != nil {
			return err
		}

		if err := tx.Create(&models.UserScope{UserID: userID, ScopeID: scopeID}).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.Duplicate(err, "User %d already assigned scope %d", userID, scopeID)
			}
			return err
		}

		u, err := getUserByID(tx, userID)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *GormRepo) UnassignScope(ctx context.Context, userID, scopeID uint) (*models.User, error) {
	var user *models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getUserByID(tx, userID); err != nil {
			return err
		}
		if _, err := getScope(tx, scopeID); err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND scope_id = ?", userID, scopeID).Delete(&models.UserScope{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.Missing(ErrNotAssigned, "User %d not assigned scope %d", userID, scopeID)
		}

		u, err := getUserByID(tx, userID)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
