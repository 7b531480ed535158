package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/andrewpaige1/workbook-api/auth"
	"github.com/andrewpaige1/workbook-api/logger"
	"github.com/andrewpaige1/workbook-api/models"
)

type CardService struct {
	db        *gorm.DB
	workspace *WorkspaceService
	log       *logger.Logger
}

type CardRequest struct {
	Question string
	Answer   string
}

// AddCard appends a card to a workbook the caller owns.
func (s *CardService) AddCard(ctx context.Context, identity auth.Identity, workbookID string, req CardRequest) (*models.Card, error) {
	user, err := s.workspace.users.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	fields, err := normalizeCard(req.Question, req.Answer)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if _, err := s.workspace.ownedWorkbook(ctx, db, user.ID, workbookID); err != nil {
		return nil, err
	}

	card := &models.Card{WorkbookID: workbookID, Question: fields.Question, Answer: fields.Answer}
	if err := db.Create(card).Error; err != nil {
		s.log.Error("failed to create card", "workbook_id", workbookID, "error", err)
		return nil, storeErr(err, "card")
	}
	s.log.Info("card added", "workbook_id", workbookID, "card_id", card.ID)
	return card, nil
}

// EditCard replaces a card's text. Study records keep the text they captured.
func (s *CardService) EditCard(ctx context.Context, identity auth.Identity, workbookID, cardID string, req CardRequest) (*models.Card, error) {
	user, err := s.workspace.users.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	fields, err := normalizeCard(req.Question, req.Answer)
	if err != nil {
		return nil, err
	}
	card, err := s.ownedCard(ctx, user.ID, workbookID, cardID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(card).Updates(map[string]interface{}{
		"question": fields.Question,
		"answer":   fields.Answer,
	}).Error; err != nil {
		s.log.Error("failed to update card", "card_id", cardID, "error", err)
		return nil, storeErr(err, "card")
	}
	card.Question = fields.Question
	card.Answer = fields.Answer
	return card, nil
}

// DeleteCard removes a card. Its study records stay, still pointing at the
// old card id.
func (s *CardService) DeleteCard(ctx context.Context, identity auth.Identity, workbookID, cardID string) error {
	user, err := s.workspace.users.Resolve(ctx, identity)
	if err != nil {
		return err
	}
	card, err := s.ownedCard(ctx, user.ID, workbookID, cardID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(card).Error; err != nil {
		s.log.Error("failed to delete card", "card_id", cardID, "error", err)
		return storeErr(err, "card")
	}
	s.log.Info("card deleted", "workbook_id", workbookID, "card_id", cardID)
	return nil
}

func (s *CardService) ownedCard(ctx context.Context, userID, workbookID, cardID string) (*models.Card, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.workspace.ownedWorkbook(ctx, db, userID, workbookID); err != nil {
		return nil, err
	}
	var card models.Card
	if err := db.Where("id = ? AND workbook_id = ?", cardID, workbookID).First(&card).Error; err != nil {
		return nil, storeErr(err, "card")
	}
	return &card, nil
}
