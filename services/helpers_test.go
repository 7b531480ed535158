package services

import (
	"context"
	"errors"
	"testing"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/text/language"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/andrewpaige1/workbook-api/apperr"
	"github.com/andrewpaige1/workbook-api/auth"
	"github.com/andrewpaige1/workbook-api/cache"
	"github.com/andrewpaige1/workbook-api/logger"
	"github.com/andrewpaige1/workbook-api/models"
)

var (
	alice = auth.Identity{Email: "alice@example.com", Name: "Alice"}
	bob   = auth.Identity{Email: "bob@example.com", Name: "Bob"}
)

// newTestDB opens a private in-memory SQLite database with every model
// migrated. It is closed when the test ends.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name, err := gonanoid.Generate("abcdefghijklmnopqrstuvwxyz", 12)
	if err != nil {
		t.Fatalf("generate db name: %v", err)
	}
	dsn := "file:" + name + "?mode=memory&cache=shared&_foreign_keys=1"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testEnv struct {
	db    *gorm.DB
	cache *cache.Memory
	svc   *Services
}

// newTestEnv wires the services over a fresh database with alice and bob
// already signed in. The shuffle is the identity permutation unless opts
// overrides it.
func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	db := newTestDB(t)
	mem := cache.NewMemory(cache.Config{})
	if opts.Shuffle == nil {
		opts.Shuffle = func(int, func(i, j int)) {}
	}
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}
	env := &testEnv{db: db, cache: mem, svc: New(db, mem, logger.Nop(), opts)}
	for _, id := range []auth.Identity{alice, bob} {
		if _, err := env.svc.Users.Sync(context.Background(), id); err != nil {
			t.Fatalf("sync %s: %v", id.Email, err)
		}
	}
	return env
}

func (e *testEnv) mkdir(t *testing.T, who auth.Identity, name string, parentID *string) *models.Directory {
	t.Helper()
	item, err := e.svc.Workspace.Create(context.Background(), who, CreateItemRequest{
		Type: models.ItemDirectory, Name: name, ParentID: parentID,
	})
	if err != nil {
		t.Fatalf("create directory %q: %v", name, err)
	}
	return item.Directory
}

func (e *testEnv) mkworkbook(t *testing.T, who auth.Identity, name string, parentID *string) *models.Workbook {
	t.Helper()
	item, err := e.svc.Workspace.Create(context.Background(), who, CreateItemRequest{
		Type: models.ItemWorkbook, Name: name, Description: "deck " + name, ParentID: parentID,
	})
	if err != nil {
		t.Fatalf("create workbook %q: %v", name, err)
	}
	return item.Workbook
}

func (e *testEnv) addCard(t *testing.T, who auth.Identity, workbookID, q, a string) *models.Card {
	t.Helper()
	card, err := e.svc.Cards.AddCard(context.Background(), who, workbookID, CardRequest{Question: q, Answer: a})
	if err != nil {
		t.Fatalf("add card: %v", err)
	}
	return card
}

func assertKind(t *testing.T, err error, want apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := apperr.KindOf(err); got != want {
		t.Fatalf("expected %v error, got %v (%v)", want, got, err)
	}
}

func assertIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected errors.Is(%v, %v)", err, target)
	}
}

// anonymous has no display name.
func anonymous() auth.Identity { return auth.Identity{Email: "anon@example.com"} }

func strPtr(s string) *string { return &s }

func names(items []models.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name())
	}
	return out
}

var errInjected = errors.New("injected store failure")

// failCreates makes every insert into table fail from now on.
func failCreates(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			tx.AddError(errInjected)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}
