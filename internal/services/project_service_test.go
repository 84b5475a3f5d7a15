package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/kawanlabs/kawan-backend/internal/domain"
	"github.com/kawanlabs/kawan-backend/internal/economy"
	"github.com/kawanlabs/kawan-backend/internal/repo"
)

func TestProjectCreate_GrantsCountAchievements(t *testing.T) {
	db := newServiceDB(t)
	u := seedUser(t, db, 0, 0)
	svc := NewProjectService(db, NewProjectRepo())

	first, err := svc.Create(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Project.Name != domain.PlaceholderProjectName {
		t.Errorf("name = %q, want placeholder", first.Project.Name)
	}
	if !reflect.DeepEqual(first.NewAchievements, []string{economy.AchFirstChat}) {
		t.Errorf("first creation achievements = %v, want [first_chat]", first.NewAchievements)
	}

	// Creations 2-9 grant nothing new.
	for i := 2; i <= 9; i++ {
		res, err := svc.Create(context.Background(), u.ID)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if len(res.NewAchievements) != 0 {
			t.Errorf("creation %d granted %v", i, res.NewAchievements)
		}
	}

	tenth, err := svc.Create(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("tenth create: %v", err)
	}
	if !reflect.DeepEqual(tenth.NewAchievements, []string{economy.AchTenChats}) {
		t.Errorf("tenth creation achievements = %v, want [ten_chats]", tenth.NewAchievements)
	}

	stored := reloadUser(t, db, u.ID)
	if !stored.Achievements.Has(economy.AchFirstChat) || !stored.Achievements.Has(economy.AchTenChats) {
		t.Errorf("stored achievements = %v", stored.Achievements)
	}
}

func TestProjectListPage(t *testing.T) {
	db := newServiceDB(t)
	u := seedUser(t, db, 0, 0)
	svc := NewProjectService(db, NewProjectRepo())

	items, total, err := svc.ListPage(context.Background(), u.ID, 1, 20)
	if err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("empty list = %v items, total %d, err %v", items, total, err)
	}

	for i := 0; i < 5; i++ {
		if _, err := svc.Create(context.Background(), u.ID); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	items, total, err = svc.ListPage(context.Background(), u.ID, 1, 2)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 5 || len(items) != 2 {
		t.Errorf("page 1 = %d items, total %d; want 2/5", len(items), total)
	}

	// Out-of-range values fall back to defaults.
	items, total, err = svc.ListPage(context.Background(), u.ID, -3, 0)
	if err != nil || total != 5 || len(items) != 5 {
		t.Errorf("defaulted page = %d items, total %d, err %v", len(items), total, err)
	}
}

func TestProjectListMessagesPage_Ownership(t *testing.T) {
	db := newServiceDB(t)
	owner := seedUser(t, db, 0, 0)
	intruder := seedUser(t, db, 0, 0)
	p := seedProject(t, db, owner.ID, "Trip")
	svc := NewProjectService(db, NewProjectRepo())

	if _, _, err := svc.ListMessagesPage(context.Background(), intruder.ID, p.ID, 1, 20); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("foreign listing err = %v, want ErrProjectNotFound", err)
	}

	msgs, total, err := svc.ListMessagesPage(context.Background(), owner.ID, p.ID, 1, 20)
	if err != nil || total != 0 || len(msgs) != 0 {
		t.Fatalf("empty thread = %v, total %d, err %v", msgs, total, err)
	}

	if _, err := repo.CreateMessage(db, p.ID, owner.ID, domain.RoleUser, "hi", "", nil); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	msgs, total, err = svc.ListMessagesPage(context.Background(), owner.ID, p.ID, 1, 20)
	if err != nil || total != 1 || len(msgs) != 1 {
		t.Fatalf("thread = %v, total %d, err %v", msgs, total, err)
	}
}

func TestProjectDelete(t *testing.T) {
	db := newServiceDB(t)
	u := seedUser(t, db, 0, 0)
	p := seedProject(t, db, u.ID, "Trip")
	if _, err := repo.CreateMessage(db, p.ID, u.ID, domain.RoleUser, "hi", "", nil); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	svc := NewProjectService(db, NewProjectRepo())

	if err := svc.Delete(context.Background(), u.ID, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), u.ID, p.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Error("project still readable after delete")
	}
	if n := countMessages(t, db, p.ID); n != 0 {
		t.Errorf("messages survived the cascade: %d", n)
	}

	if err := svc.Delete(context.Background(), u.ID, p.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("second delete err = %v, want ErrProjectNotFound", err)
	}
}
