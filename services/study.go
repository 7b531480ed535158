package services

import (
	"context"
	"math"
	"strings"

	"gorm.io/gorm"

	"github.com/andrewpaige1/workbook-api/apperr"
	"github.com/andrewpaige1/workbook-api/auth"
	"github.com/andrewpaige1/workbook-api/logger"
	"github.com/andrewpaige1/workbook-api/models"
)

type StudyService struct {
	db        *gorm.DB
	workspace *WorkspaceService
	shuffle   func(n int, swap func(i, j int))
	log       *logger.Logger
}

// StudyResult is one answered card, in the order it was shown.
type StudyResult struct {
	CardID    string `json:"cardId"`
	IsCorrect bool   `json:"isCorrect"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

type CardHistory struct {
	Records  []models.StudyRecord `json:"records"`
	Accuracy int                  `json:"accuracy"`
}

type SessionView struct {
	Session      *models.StudySession `json:"session"`
	CorrectCount int                  `json:"correctCount"`
	Total        int                  `json:"total"`
}

// StartStudy returns the workbook's current cards in a fresh random order.
func (s *StudyService) StartStudy(ctx context.Context, identity auth.Identity, workbookID string) ([]models.Card, error) {
	user, err := s.workspace.users.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if _, err := s.workspace.ownedWorkbook(ctx, db, user.ID, workbookID); err != nil {
		return nil, err
	}

	var cards []models.Card
	if err := db.Where("workbook_id = ?", workbookID).Order("created_at ASC, id ASC").Find(&cards).Error; err != nil {
		return nil, storeErr(err, "card")
	}
	if len(cards) == 0 {
		return nil, apperr.Validation("this workbook has no cards to study")
	}
	s.shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	return cards, nil
}

// RunStudySession stores one finished session and all of its records in a
// single transaction. Missing question/answer text is filled from the live
// card; a result for a card that no longer exists must carry its own text.
// Results citing a live card of another workbook are rejected.
func (s *StudyService) RunStudySession(ctx context.Context, identity auth.Identity, workbookID string, results []StudyResult) (*models.StudySession, error) {
	user, err := s.workspace.users.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, apperr.Validation("a study session needs at least one result")
	}
	db := s.db.WithContext(ctx)
	if _, err := s.workspace.ownedWorkbook(ctx, db, user.ID, workbookID); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		if id := strings.TrimSpace(r.CardID); id != "" {
			ids = append(ids, id)
		}
	}
	var live []models.Card
	if len(ids) > 0 {
		if err := db.Where("id IN ?", ids).Find(&live).Error; err != nil {
			return nil, storeErr(err, "card")
		}
	}
	byID := make(map[string]models.Card, len(live))
	for _, c := range live {
		// A live card from another deck is never part of this session.
		if c.WorkbookID != workbookID {
			return nil, apperr.Validationf("card %s is not in this workbook", c.ID)
		}
		byID[c.ID] = c
	}

	session := &models.StudySession{UserID: user.ID, WorkbookID: workbookID}
	records := make([]models.StudyRecord, 0, len(results))
	correct := 0
	for i, r := range results {
		cardID := strings.TrimSpace(r.CardID)
		question := strings.TrimSpace(r.Question)
		answer := strings.TrimSpace(r.Answer)
		if card, ok := byID[cardID]; ok {
			if question == "" {
				question = card.Question
			}
			if answer == "" {
				answer = card.Answer
			}
		}
		if question == "" || answer == "" {
			return nil, apperr.Validationf("result %d has no card text", i+1)
		}
		rec := models.StudyRecord{
			Position:  i,
			IsCorrect: r.IsCorrect,
			Question:  question,
			Answer:    answer,
		}
		if cardID != "" {
			rec.CardID = &cardID
		}
		if r.IsCorrect {
			correct++
		}
		records = append(records, rec)
	}
	session.AccuracyRate = accuracyRate(correct, len(results))

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		for i := range records {
			records[i].SessionID = session.ID
			records[i].CreatedAt = session.CreatedAt
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		s.log.Error("failed to save study session", "workbook_id", workbookID, "error", err)
		return nil, storeErr(err, "study session")
	}
	session.Records = records

	s.log.Info("study session saved", "session_id", session.ID, "workbook_id", workbookID, "accuracy", session.AccuracyRate)
	return session, nil
}

// GetCardHistory lists the caller's records for a card, newest first. The
// card itself may already be deleted.
func (s *StudyService) GetCardHistory(ctx context.Context, identity auth.Identity, cardID string) (*CardHistory, error) {
	user, err := s.workspace.users.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	var records []models.StudyRecord
	err = s.db.WithContext(ctx).
		Model(&models.StudyRecord{}).
		Select("study_records.*").
		Joins("JOIN study_sessions ON study_sessions.id = study_records.session_id").
		Where("study_records.card_id = ? AND study_sessions.user_id = ?", cardID, user.ID).
		Order("study_records.created_at DESC, study_records.position DESC").
		Find(&records).Error
	if err != nil {
		return nil, storeErr(err, "study record")
	}

	correct := 0
	for _, r := range records {
		if r.IsCorrect {
			correct++
		}
	}
	if records == nil {
		records = []models.StudyRecord{}
	}
	return &CardHistory{
		Records:  records,
		Accuracy: int(math.Round(accuracyRate(correct, len(records)))),
	}, nil
}

// ListSessions returns the caller's sessions on a workbook, newest first.
func (s *StudyService) ListSessions(ctx context.Context, identity auth.Identity, workbookID string) ([]models.StudySession, error) {
	user, err := s.workspace.users.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if _, err := s.workspace.ownedWorkbook(ctx, db, user.ID, workbookID); err != nil {
		return nil, err
	}
	var sessions []models.StudySession
	if err := db.Where("workbook_id = ? AND user_id = ?", workbookID, user.ID).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, storeErr(err, "study session")
	}
	if sessions == nil {
		sessions = []models.StudySession{}
	}
	return sessions, nil
}

func (s *StudyService) GetSession(ctx context.Context, identity auth.Identity, sessionID string) (*SessionView, error) {
	user, err := s.workspace.users.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	var session models.StudySession
	err = s.db.WithContext(ctx).
		Preload("Records", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ? AND user_id = ?", sessionID, user.ID).
		First(&session).Error
	if err != nil {
		return nil, storeErr(err, "study session")
	}
	correct := 0
	for _, r := range session.Records {
		if r.IsCorrect {
			correct++
		}
	}
	return &SessionView{Session: &session, CorrectCount: correct, Total: len(session.Records)}, nil
}

func accuracyRate(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(correct) / float64(total)
}
