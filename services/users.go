package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/andrewpaige1/workbook-api/apperr"
	"github.com/andrewpaige1/workbook-api/auth"
	"github.com/andrewpaige1/workbook-api/logger"
	"github.com/andrewpaige1/workbook-api/models"
)

type UserService struct {
	db  *gorm.DB
	log *logger.Logger
}

// Sync creates the user for identity if absent, or updates the display name
// when a non-empty one differs from what is stored.
func (s *UserService) Sync(ctx context.Context, identity auth.Identity) (*models.User, error) {
	email := strings.TrimSpace(identity.Email)
	name := strings.TrimSpace(identity.Name)
	if email == "" {
		return nil, apperr.Unauthorized("no authenticated e-mail")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{Email: email, Name: name}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// A concurrent sign-in created the row first.
				return s.resolveEmail(ctx, email)
			}
			s.log.Error("failed to create user", "error", err)
			return nil, apperr.Persistence(err)
		}
		s.log.Info("created user", "user_id", user.ID)
		return &user, nil
	case err != nil:
		return nil, apperr.Persistence(err)
	}

	if name != "" && user.Name != name {
		if err := s.db.WithContext(ctx).Model(&user).Update("name", name).Error; err != nil {
			s.log.Error("failed to update user name", "user_id", user.ID, "error", err)
			return nil, apperr.Persistence(err)
		}
		s.log.Info("updated user name", "user_id", user.ID)
	}
	return &user, nil
}

// Resolve looks up the stored user behind identity.
func (s *UserService) Resolve(ctx context.Context, identity auth.Identity) (*models.User, error) {
	email := strings.TrimSpace(identity.Email)
	if email == "" {
		return nil, apperr.Unauthorized("no authenticated e-mail")
	}
	return s.resolveEmail(ctx, email)
}

func (s *UserService) resolveEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, storeErr(err, "user")
	}
	return &user, nil
}
