package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesSentinelForKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		kind     Kind
		status   int
	}{
		{"validation", Validation("name is required"), ErrValidation, KindValidation, http.StatusBadRequest},
		{"not found", NotFound("workbook"), ErrNotFound, KindNotFound, http.StatusNotFound},
		{"duplicate name", DuplicateName("Algebra"), ErrDuplicateName, KindDuplicateName, http.StatusConflict},
		{"self reference", SelfReference(), ErrSelfReference, KindSelfReference, http.StatusBadRequest},
		{"self share", SelfShare(), ErrSelfShare, KindSelfShare, http.StatusBadRequest},
		{"persistence", Persistence(errors.New("connection reset")), ErrPersistence, KindPersistence, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("expected errors.Is to match %v", tt.sentinel)
			}
			if errors.Is(wrapped, ErrUnauthorized) {
				t.Errorf("did not expect a match against ErrUnauthorized")
			}
			if KindOf(wrapped) != tt.kind {
				t.Errorf("KindOf = %v, want %v", KindOf(wrapped), tt.kind)
			}
			if StatusCode(KindOf(wrapped)) != tt.status {
				t.Errorf("StatusCode = %d, want %d", StatusCode(KindOf(wrapped)), tt.status)
			}
		})
	}
}

func TestMessageHidesCause(t *testing.T) {
	err := Persistence(errors.New("pq: password authentication failed"))
	if Message(err) != "the operation could not be completed" {
		t.Errorf("unexpected message %q", Message(err))
	}
	if !errors.Is(err, err.Err) {
		t.Errorf("expected the cause to stay reachable through Unwrap")
	}
	if Message(errors.New("boom")) != "the operation could not be completed" {
		t.Errorf("plain errors should get the generic message")
	}
	if KindOf(errors.New("boom")) != KindPersistence {
		t.Errorf("plain errors should be persistence failures")
	}
}

func TestDuplicateNameMessageQuotesName(t *testing.T) {
	got := DuplicateName("Math").Message
	want := `an item named "Math" already exists in this location`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
