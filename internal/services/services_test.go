package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kawanlabs/kawan-backend/internal/domain"
	"github.com/kawanlabs/kawan-backend/internal/llm"
	"github.com/kawanlabs/kawan-backend/internal/repo"
)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("services_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// seedUser writes a verified account with the given balances.
func seedUser(t *testing.T, db *gorm.DB, credits, coins int64) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:             uuid.NewString(),
		Email:          uuid.NewString() + "@example.com",
		Username:       "tester",
		PasswordHash:   "x",
		Verified:       true,
		Credits:        credits,
		Coins:          coins,
		Level:          1,
		NextLevelExp:   50,
		Achievements:   domain.StringSet{},
		UnlockedThemes: domain.StringSet{},
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// seedProject writes a project for userID. An empty name keeps the
// placeholder (which makes the thread auto-title eligible).
func seedProject(t *testing.T, db *gorm.DB, userID, name string) *domain.Project {
	t.Helper()
	p, err := repo.CreateProject(context.Background(), db, userID)
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}
	if name != "" {
		if err := repo.UpdateProjectName(context.Background(), db, p.ID, userID, name); err != nil {
			t.Fatalf("name project: %v", err)
		}
		p.Name = name
	}
	return p
}

func reloadUser(t *testing.T, db *gorm.DB, id string) *domain.User {
	t.Helper()
	u, err := repo.GetUser(context.Background(), db, id)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return u
}

// fakeGateway is a scripted llm.Gateway. Replies are consumed in order;
// when the queue is empty, reply is returned. A non-nil err fails every
// call.
type fakeGateway struct {
	reply   string
	replies []string
	chunks  []string
	err     error

	calls    int
	lastReq  llm.Request
	streamed bool
}

func (f *fakeGateway) next() string {
	if len(f.replies) > 0 {
		head := f.replies[0]
		f.replies = f.replies[1:]
		return head
	}
	return f.reply
}

func (f *fakeGateway) Generate(ctx context.Context, req llm.Request) (*llm.Result, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Result{Text: f.next()}, nil
}

func (f *fakeGateway) GenerateStream(ctx context.Context, req llm.Request, emit func(chunk string) error) error {
	f.calls++
	f.lastReq = req
	f.streamed = true
	if f.err != nil {
		return f.err
	}
	for _, c := range f.chunks {
		if err := emit(c); err != nil {
			return err
		}
	}
	return nil
}

func countMessages(t *testing.T, db *gorm.DB, projectID string) int64 {
	t.Helper()
	n, err := repo.CountMessages(db, projectID)
	if err != nil {
		t.Fatalf("count messages: %v", err)
	}
	return n
}
