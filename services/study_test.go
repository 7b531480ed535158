package services

import (
	"context"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/andrewpaige1/workbook-api/apperr"
	"github.com/andrewpaige1/workbook-api/models"
)

func TestCardValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Options{})
	wb := env.mkworkbook(t, alice, "Algebra", nil)

	tests := []struct {
		name string
		req  CardRequest
		ok   bool
	}{
		{"trimmed", CardRequest{Question: "  2+2 ", Answer: " 4 "}, true},
		{"empty question", CardRequest{Question: "  ", Answer: "4"}, false},
		{"empty answer", CardRequest{Question: "2+2", Answer: ""}, false},
		{"question at limit", CardRequest{Question: strings.Repeat("q", 2000), Answer: "a"}, true},
		{"question over limit", CardRequest{Question: strings.Repeat("q", 2001), Answer: "a"}, false},
		{"answer over limit", CardRequest{Question: "q", Answer: strings.Repeat("a", 2001)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, err := env.svc.Cards.AddCard(ctx, alice, wb.ID, tt.req)
			if !tt.ok {
				assertKind(t, err, apperr.KindValidation)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if card.Question != strings.TrimSpace(tt.req.Question) || card.Answer != strings.TrimSpace(tt.req.Answer) {
				t.Errorf("card not trimmed: %+v", card)
			}
		})
	}

	_, err := env.svc.Cards.AddCard(ctx, bob, wb.ID, CardRequest{Question: "q", Answer: "a"})
	assertKind(t, err, apperr.KindNotFound)
}

func TestStudyScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Options{})
	wb := env.mkworkbook(t, alice, "Algebra", nil)
	c1 := env.addCard(t, alice, wb.ID, "x+1=2", "1")
	c2 := env.addCard(t, alice, wb.ID, "2x=4", "2")
	c3 := env.addCard(t, alice, wb.ID, "x^2=9", "3")

	session, err := env.svc.Study.RunStudySession(ctx, alice, wb.ID, []StudyResult{
		{CardID: c1.ID, IsCorrect: true},
		{CardID: c2.ID, IsCorrect: true},
		{CardID: c3.ID, IsCorrect: false},
	})
	if err != nil {
		t.Fatalf("run session: %v", err)
	}
	if math.Abs(session.AccuracyRate-200.0/3) > 1e-9 {
		t.Errorf("accuracyRate = %v, want 66.67", session.AccuracyRate)
	}
	if math.Round(session.AccuracyRate*100)/100 != 66.67 {
		t.Errorf("accuracyRate rounds to %v", math.Round(session.AccuracyRate*100)/100)
	}

	var n int64
	env.db.Model(&models.StudyRecord{}).Where("session_id = ?", session.ID).Count(&n)
	if n != 3 {
		t.Fatalf("expected 3 records, got %d", n)
	}

	h1, err := env.svc.Study.GetCardHistory(ctx, alice, c1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if h1.Accuracy != 100 || len(h1.Records) != 1 || h1.Records[0].Question != "x+1=2" {
		t.Errorf("card1 history = %+v", h1)
	}
	h3, err := env.svc.Study.GetCardHistory(ctx, alice, c3.ID)
	if err != nil {
		t.Fatal(err)
	}
	if h3.Accuracy != 0 || len(h3.Records) != 1 {
		t.Errorf("card3 history = %+v", h3)
	}

	view, err := env.svc.Study.GetSession(ctx, alice, session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if view.CorrectCount != 2 || view.Total != 3 {
		t.Errorf("session view = %d/%d", view.CorrectCount, view.Total)
	}
	if view.Session.Records[0].Question != "x+1=2" || view.Session.Records[2].Question != "x^2=9" {
		t.Errorf("records out of order: %+v", view.Session.Records)
	}

	_, err = env.svc.Study.GetSession(ctx, bob, session.ID)
	assertKind(t, err, apperr.KindNotFound)
}

func TestCardHistoryAccuracyRounds(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Options{})
	wb := env.mkworkbook(t, alice, "Algebra", nil)
	card := env.addCard(t, alice, wb.ID, "q", "a")

	empty, err := env.svc.Study.GetCardHistory(ctx, alice, card.ID)
	if err != nil {
		t.Fatal(err)
	}
	if empty.Accuracy != 0 || len(empty.Records) != 0 {
		t.Errorf("empty history = %+v", empty)
	}

	for _, correct := range []bool{true, true, false} {
		if _, err := env.svc.Study.RunStudySession(ctx, alice, wb.ID, []StudyResult{{CardID: card.ID, IsCorrect: correct}}); err != nil {
			t.Fatal(err)
		}
	}
	h, err := env.svc.Study.GetCardHistory(ctx, alice, card.ID)
	if err != nil {
		t.Fatal(err)
	}
	if h.Accuracy != 67 || len(h.Records) != 3 {
		t.Fatalf("history = %d%% over %d records", h.Accuracy, len(h.Records))
	}
	if h.Records[0].IsCorrect || !h.Records[2].IsCorrect {
		t.Errorf("history not newest first: %+v", h.Records)
	}

	sessions, err := env.svc.Study.ListSessions(ctx, alice, wb.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 3 || sessions[0].AccuracyRate != 0 || sessions[2].AccuracyRate != 100 {
		t.Errorf("sessions not newest first: %+v", sessions)
	}

	other, err := env.svc.Study.GetCardHistory(ctx, bob, card.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(other.Records) != 0 {
		t.Errorf("bob must not see alice's records, got %d", len(other.Records))
	}
}

func TestCardEditAndDeleteKeepSnapshots(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Options{})
	wb := env.mkworkbook(t, alice, "Algebra", nil)
	card := env.addCard(t, alice, wb.ID, "capital of France", "Paris")
	if _, err := env.svc.Study.RunStudySession(ctx, alice, wb.ID, []StudyResult{{CardID: card.ID, IsCorrect: true}}); err != nil {
		t.Fatal(err)
	}

	edited, err := env.svc.Cards.EditCard(ctx, alice, wb.ID, card.ID, CardRequest{Question: "capital of Japan", Answer: "Tokyo"})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Answer != "Tokyo" {
		t.Errorf("edited = %+v", edited)
	}
	_, err = env.svc.Cards.EditCard(ctx, alice, wb.ID, card.ID, CardRequest{Question: "", Answer: "x"})
	assertKind(t, err, apperr.KindValidation)

	if err := env.svc.Cards.DeleteCard(ctx, alice, wb.ID, card.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	err = env.svc.Cards.DeleteCard(ctx, alice, wb.ID, card.ID)
	assertKind(t, err, apperr.KindNotFound)

	h, err := env.svc.Study.GetCardHistory(ctx, alice, card.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Records) != 1 || h.Records[0].Question != "capital of France" || h.Records[0].Answer != "Paris" {
		t.Fatalf("snapshot lost: %+v", h.Records)
	}
	if h.Accuracy != 100 {
		t.Errorf("accuracy = %d", h.Accuracy)
	}
}

func TestRunStudySessionRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Options{})
	wb := env.mkworkbook(t, alice, "Algebra", nil)
	card := env.addCard(t, alice, wb.ID, "q", "a")

	_, err := env.svc.Study.RunStudySession(ctx, alice, wb.ID, nil)
	assertKind(t, err, apperr.KindValidation)

	// Unknown card and no text to snapshot: nothing may be written.
	_, err = env.svc.Study.RunStudySession(ctx, alice, wb.ID, []StudyResult{
		{CardID: card.ID, IsCorrect: true},
		{CardID: "gone"},
	})
	assertKind(t, err, apperr.KindValidation)

	_, err = env.svc.Study.RunStudySession(ctx, bob, wb.ID, []StudyResult{{CardID: card.ID}})
	assertKind(t, err, apperr.KindNotFound)

	// Live cards from other decks are refused even with text attached.
	other := env.mkworkbook(t, alice, "Geometry", nil)
	otherCard := env.addCard(t, alice, other.ID, "angle", "90")
	bobs := env.mkworkbook(t, bob, "Bio", nil)
	bobCard := env.addCard(t, bob, bobs.ID, "cell", "unit")
	for _, foreign := range []models.Card{*otherCard, *bobCard} {
		_, err = env.svc.Study.RunStudySession(ctx, alice, wb.ID, []StudyResult{
			{CardID: card.ID, IsCorrect: true},
			{CardID: foreign.ID, Question: "x", Answer: "y", IsCorrect: true},
		})
		assertKind(t, err, apperr.KindValidation)
	}
	h, err := env.svc.Study.GetCardHistory(ctx, alice, otherCard.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Records) != 0 {
		t.Errorf("foreign card gained %d records", len(h.Records))
	}

	var sessions, records int64
	env.db.Model(&models.StudySession{}).Count(&sessions)
	env.db.Model(&models.StudyRecord{}).Count(&records)
	if sessions != 0 || records != 0 {
		t.Fatalf("partial session written: %d sessions, %d records", sessions, records)
	}

	// A deleted card still records when the client sends its text.
	s, err := env.svc.Study.RunStudySession(ctx, alice, wb.ID, []StudyResult{
		{CardID: "gone", Question: "old q", Answer: "old a", IsCorrect: true},
	})
	if err != nil {
		t.Fatalf("snapshot from client text: %v", err)
	}
	if s.AccuracyRate != 100 || len(s.Records) != 1 || s.Records[0].Question != "old q" {
		t.Errorf("session = %+v", s)
	}
}

func TestStartStudyShuffles(t *testing.T) {
	ctx := context.Background()
	reversed := func(n int, swap func(i, j int)) {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			swap(i, j)
		}
	}
	env := newTestEnv(t, Options{Shuffle: reversed})
	wb := env.mkworkbook(t, alice, "Algebra", nil)

	_, err := env.svc.Study.StartStudy(ctx, alice, wb.ID)
	assertKind(t, err, apperr.KindValidation)

	env.addCard(t, alice, wb.ID, "one", "1")
	env.addCard(t, alice, wb.ID, "two", "2")
	env.addCard(t, alice, wb.ID, "three", "3")

	deck, err := env.svc.Study.StartStudy(ctx, alice, wb.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(deck) != 3 || deck[0].Question != "three" || deck[2].Question != "one" {
		t.Errorf("deck = %+v", deck)
	}

	_, err = env.svc.Study.StartStudy(ctx, bob, wb.ID)
	assertKind(t, err, apperr.KindNotFound)
}

func TestDefaultShuffleIsAPermutation(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.svc.Study.shuffle = rand.Shuffle
	wb := env.mkworkbook(t, alice, "Big", nil)
	want := map[string]bool{}
	for i := 0; i < 20; i++ {
		c := env.addCard(t, alice, wb.ID, strings.Repeat("q", i+1), "a")
		want[c.ID] = true
	}
	deck, err := env.svc.Study.StartStudy(context.Background(), alice, wb.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(deck) != len(want) {
		t.Fatalf("deck has %d cards, want %d", len(deck), len(want))
	}
	for _, c := range deck {
		if !want[c.ID] {
			t.Fatalf("unexpected card %s", c.ID)
		}
		delete(want, c.ID)
	}
}

func TestRunStudySessionRollsBackOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Options{})
	wb := env.mkworkbook(t, alice, "Algebra", nil)
	c1 := env.addCard(t, alice, wb.ID, "q1", "a1")
	c2 := env.addCard(t, alice, wb.ID, "q2", "a2")
	failCreates(t, env.db, "study_records")

	_, err := env.svc.Study.RunStudySession(ctx, alice, wb.ID, []StudyResult{
		{CardID: c1.ID, IsCorrect: true},
		{CardID: c2.ID},
	})
	assertKind(t, err, apperr.KindPersistence)

	var sessions, records int64
	env.db.Model(&models.StudySession{}).Count(&sessions)
	env.db.Model(&models.StudyRecord{}).Count(&records)
	if sessions != 0 || records != 0 {
		t.Fatalf("failed save left %d sessions, %d records", sessions, records)
	}
}
