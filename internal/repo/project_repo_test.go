package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/kawanlabs/kawan-backend/internal/domain"
)

func TestCreateProject_PlaceholderName(t *testing.T) {
	db := newRepoDB(t, &domain.Project{})
	p, err := CreateProject(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if p.ID == "" || p.UserID != "u1" {
		t.Fatalf("unexpected project fields: %+v", p)
	}
	if p.Name != domain.PlaceholderProjectName {
		t.Errorf("name = %q, want placeholder", p.Name)
	}
}

func TestGetProject_OwnershipEnforced(t *testing.T) {
	db := newRepoDB(t, &domain.Project{})
	p, _ := CreateProject(context.Background(), db, "u1")

	if _, err := GetProject(context.Background(), db, p.ID, "u1"); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, err := GetProject(context.Background(), db, p.ID, "u2"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("foreign read err = %v, want ErrRecordNotFound", err)
	}
}

func TestListProjectsPage_NewestFirst(t *testing.T) {
	db := newRepoDB(t, &domain.Project{})
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		p := &domain.Project{
			ID:        string(rune('a' + i)),
			UserID:    "u1",
			Name:      domain.PlaceholderProjectName,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("seed project: %v", err)
		}
	}

	total, err := CountProjects(context.Background(), db, "u1")
	if err != nil || total != 5 {
		t.Fatalf("CountProjects = %d, %v; want 5", total, err)
	}

	page, err := ListProjectsPage(context.Background(), db, "u1", 0, 2)
	if err != nil {
		t.Fatalf("ListProjectsPage: %v", err)
	}
	if len(page) != 2 || page[0].ID != "e" || page[1].ID != "d" {
		t.Errorf("first page = %+v, want newest first (e, d)", page)
	}

	page, _ = ListProjectsPage(context.Background(), db, "u1", 4, 2)
	if len(page) != 1 || page[0].ID != "a" {
		t.Errorf("last page = %+v, want oldest (a)", page)
	}
}

func TestUpdateProjectName(t *testing.T) {
	db := newRepoDB(t, &domain.Project{})
	p, _ := CreateProject(context.Background(), db, "u1")

	if err := UpdateProjectName(context.Background(), db, p.ID, "u1", "Borobudur Trip"); err != nil {
		t.Fatalf("UpdateProjectName: %v", err)
	}
	got, _ := GetProject(context.Background(), db, p.ID, "u1")
	if got.Name != "Borobudur Trip" {
		t.Errorf("name = %q, want renamed", got.Name)
	}

	if err := UpdateProjectName(context.Background(), db, p.ID, "u2", "x"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("foreign rename err = %v, want ErrRecordNotFound", err)
	}
}

func TestDeleteProjectCascade(t *testing.T) {
	db := newRepoDB(t, &domain.Project{}, &domain.ChatMessage{})
	p, _ := CreateProject(context.Background(), db, "u1")
	if _, err := CreateMessage(db, p.ID, "u1", domain.RoleUser, "hello", "", nil); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if _, err := CreateMessage(db, p.ID, "u1", domain.RoleModel, "hi", "", nil); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	if err := DeleteProjectCascade(context.Background(), db, p.ID, "u1"); err != nil {
		t.Fatalf("DeleteProjectCascade: %v", err)
	}
	if _, err := GetProject(context.Background(), db, p.ID, "u1"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Error("project still readable after cascade")
	}
	n, _ := CountMessages(db, p.ID)
	if n != 0 {
		t.Errorf("messages remaining = %d, want 0", n)
	}

	if err := DeleteProjectCascade(context.Background(), db, p.ID, "u1"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("second cascade err = %v, want ErrRecordNotFound", err)
	}
}

func TestListProjectIDs(t *testing.T) {
	db := newRepoDB(t, &domain.Project{})
	a, _ := CreateProject(context.Background(), db, "u1")
	b, _ := CreateProject(context.Background(), db, "u1")
	_, _ = CreateProject(context.Background(), db, "u2")

	ids, err := ListProjectIDs(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("ListProjectIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("len(ids) = %d, want 2", len(ids))
	}
	seen := map[string]bool{ids[0]: true, ids[1]: true}
	if !seen[a.ID] || !seen[b.ID] {
		t.Errorf("ids = %v, want {%s, %s}", ids, a.ID, b.ID)
	}
}
