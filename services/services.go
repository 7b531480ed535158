package services

import (
	"context"
	"errors"
	"math/rand/v2"

	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/andrewpaige1/workbook-api/apperr"
	"github.com/andrewpaige1/workbook-api/cache"
	"github.com/andrewpaige1/workbook-api/logger"
)

const DefaultSharedDirectoryName = "Shared Items"

type Options struct {
	// Locale drives listing order. Defaults to language.Japanese.
	Locale language.Tag
	// SharedDirectoryName is the receiver-root folder copy-sharing fills.
	SharedDirectoryName string
	// Shuffle permutes the deck handed out by StartStudy. Defaults to rand.Shuffle.
	Shuffle func(n int, swap func(i, j int))
}

// Services bundles every core operation. Each operation receives the caller's
// identity explicitly and runs as one request against the store.
type Services struct {
	Users     *UserService
	Workspace *WorkspaceService
	Cards     *CardService
	Study     *StudyService
	Sharing   *ShareService
}

func New(db *gorm.DB, listing cache.Listing, log *logger.Logger, opts Options) *Services {
	if listing == nil {
		listing = cache.NewMemory(cache.Config{})
	}
	if opts.Locale == language.Und {
		opts.Locale = language.Japanese
	}
	if opts.SharedDirectoryName == "" {
		opts.SharedDirectoryName = DefaultSharedDirectoryName
	}
	if opts.Shuffle == nil {
		opts.Shuffle = rand.Shuffle
	}

	users := &UserService{db: db, log: log.With("service", "UserService")}
	workspace := &WorkspaceService{
		db:      db,
		users:   users,
		listing: listing,
		locale:  opts.Locale,
		log:     log.With("service", "WorkspaceService"),
	}
	return &Services{
		Users:     users,
		Workspace: workspace,
		Cards: &CardService{
			db:        db,
			workspace: workspace,
			log:       log.With("service", "CardService"),
		},
		Study: &StudyService{
			db:        db,
			workspace: workspace,
			shuffle:   opts.Shuffle,
			log:       log.With("service", "StudyService"),
		},
		Sharing: &ShareService{
			db:         db,
			users:      users,
			listing:    listing,
			sharedName: opts.SharedDirectoryName,
			log:        log.With("service", "ShareService"),
		},
	}
}

// storeErr turns a gorm error into an apperr. what names the resource for
// not-found messages.
func storeErr(err error, what string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &apperr.Error{
			Kind:    apperr.KindDuplicateName,
			Message: "an item with that name already exists in this location",
			Err:     err,
		}
	default:
		return apperr.Persistence(err)
	}
}

func (s *WorkspaceService) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}
