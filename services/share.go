package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/andrewpaige1/workbook-api/apperr"
	"github.com/andrewpaige1/workbook-api/auth"
	"github.com/andrewpaige1/workbook-api/cache"
	"github.com/andrewpaige1/workbook-api/logger"
	"github.com/andrewpaige1/workbook-api/models"
)

type ShareService struct {
	db         *gorm.DB
	users      *UserService
	listing    cache.Listing
	sharedName string
	log        *logger.Logger
}

// Share copies one of the caller's workbooks, cards included, into the
// receiver's shared directory. The receiver owns the copy outright.
func (s *ShareService) Share(ctx context.Context, identity auth.Identity, workbookID, receiverEmail string) (*models.Workbook, error) {
	sender, err := s.users.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	receiverEmail = strings.TrimSpace(receiverEmail)
	if receiverEmail == "" {
		return nil, apperr.Validation("receiver e-mail is required")
	}
	receiver, err := s.users.resolveEmail(ctx, receiverEmail)
	if err != nil {
		return nil, err
	}
	if receiver.ID == sender.ID {
		return nil, apperr.SelfShare()
	}

	var source models.Workbook
	err = s.db.WithContext(ctx).
		Preload("Cards", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("id = ? AND user_id = ?", workbookID, sender.ID).
		First(&source).Error
	if err != nil {
		return nil, storeErr(err, "workbook")
	}

	var shared models.Directory
	var copied models.Workbook
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dir, err := s.sharedDirectory(tx, receiver.ID)
		if err != nil {
			return err
		}
		shared = *dir

		taken, err := nameTaken(tx, receiver.ID, &shared.ID, source.Name)
		if err != nil {
			return err
		}
		if taken {
			return apperr.DuplicateName(source.Name)
		}

		copied = models.Workbook{
			Name:        source.Name,
			Description: provenance(source.Description, displayName(sender)),
			UserID:      receiver.ID,
			ParentID:    &shared.ID,
		}
		if err := tx.Create(&copied).Error; err != nil {
			return err
		}
		if len(source.Cards) == 0 {
			return nil
		}
		// Spread timestamps so the copy keeps the source's card order.
		base := time.Now()
		cards := make([]models.Card, 0, len(source.Cards))
		for i, c := range source.Cards {
			cards = append(cards, models.Card{
				WorkbookID: copied.ID,
				Question:   c.Question,
				Answer:     c.Answer,
				CreatedAt:  base.Add(time.Duration(i) * time.Millisecond),
			})
		}
		if err := tx.Create(&cards).Error; err != nil {
			return err
		}
		copied.Cards = cards
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindPersistence {
			s.log.Error("failed to share workbook", "workbook_id", workbookID, "receiver_id", receiver.ID, "error", err)
		}
		return nil, storeErr(err, "workbook")
	}

	s.listing.Invalidate(ctx, cache.KeyFor(receiver.ID, nil), cache.KeyFor(receiver.ID, &shared.ID))
	s.log.Info("workbook shared", "workbook_id", workbookID, "copy_id", copied.ID, "receiver_id", receiver.ID)
	return &copied, nil
}

// sharedDirectory finds or creates the receiver's root shared directory.
func (s *ShareService) sharedDirectory(tx *gorm.DB, receiverID string) (*models.Directory, error) {
	var dir models.Directory
	err := tx.Where("user_id = ? AND parent_id IS NULL AND name = ?", receiverID, s.sharedName).First(&dir).Error
	if err == nil {
		return &dir, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// A root workbook may already hold the name.
	taken, err := nameTaken(tx, receiverID, nil, s.sharedName)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.DuplicateName(s.sharedName)
	}
	dir = models.Directory{Name: s.sharedName, UserID: receiverID}
	if err := tx.Create(&dir).Error; err != nil {
		return nil, err
	}
	s.log.Info("created shared directory", "user_id", receiverID, "directory_id", dir.ID)
	return &dir, nil
}

// nameTaken is the sequential form of checkDuplicateName, safe to run on a
// transaction handle.
func nameTaken(tx *gorm.DB, userID string, parentID *string, name string) (bool, error) {
	var n int64
	if err := siblings(tx.Model(&models.Directory{}), userID, parentID).Where("name = ?", name).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	if err := siblings(tx.Model(&models.Workbook{}), userID, parentID).Where("name = ?", name).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func displayName(u *models.User) string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return u.Email
}

// provenance annotates a copied description with its sender, shortening the
// source text so the result fits the description limit.
func provenance(description, sender string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return truncateRunes("Shared from "+sender, MaxDescriptionLength)
	}
	suffix := " (Shared from " + sender + ")"
	room := MaxDescriptionLength - utf8.RuneCountInString(suffix)
	if room <= 0 {
		return truncateRunes(suffix, MaxDescriptionLength)
	}
	return truncateRunes(description, room) + suffix
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
