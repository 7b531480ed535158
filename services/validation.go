package services

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/andrewpaige1/workbook-api/apperr"
)

const (
	MaxNameLength        = 50
	MaxDescriptionLength = 300
	MaxCardTextLength    = 2000
)

type itemFields struct {
	Name        string
	Description string
}

func normalizeItem(name, description string) (itemFields, error) {
	f := itemFields{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Name,
			validation.Required.Error("name is required"),
			validation.RuneLength(1, MaxNameLength).Error("name must be at most 50 characters"),
		),
		validation.Field(&f.Description,
			validation.RuneLength(0, MaxDescriptionLength).Error("description must be at most 300 characters"),
		),
	)
	return f, validationErr(err)
}

type cardFields struct {
	Question string
	Answer   string
}

func normalizeCard(question, answer string) (cardFields, error) {
	f := cardFields{
		Question: strings.TrimSpace(question),
		Answer:   strings.TrimSpace(answer),
	}
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Question,
			validation.Required.Error("question is required"),
			validation.RuneLength(1, MaxCardTextLength).Error("question must be at most 2000 characters"),
		),
		validation.Field(&f.Answer,
			validation.Required.Error("answer is required"),
			validation.RuneLength(1, MaxCardTextLength).Error("answer must be at most 2000 characters"),
		),
	)
	return f, validationErr(err)
}

// validationErr flattens ozzo field errors into one ValidationError.
func validationErr(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		keys := make([]string, 0, len(fieldErrs))
		for k := range fieldErrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		msgs := make([]string, 0, len(keys))
		for _, k := range keys {
			msgs = append(msgs, fieldErrs[k].Error())
		}
		return apperr.Validation(strings.Join(msgs, "; "))
	}
	return apperr.Validation(err.Error())
}
