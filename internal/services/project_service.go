// Package services – ProjectService
//
// This file implements the ProjectService, which owns the chat-thread
// lifecycle: creation (with project-count achievement evaluation),
// paginated listing, and deletion with a messages-first cascade. Ownership
// rules are enforced here so handlers can map a single not-found error.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kawanlabs/kawan-backend/internal/domain"
	"github.com/kawanlabs/kawan-backend/internal/economy"
	"github.com/kawanlabs/kawan-backend/internal/repo"
)

// ProjectRepo defines the repository contract required by ProjectService.
type ProjectRepo interface {
	CreateProject(ctx context.Context, db *gorm.DB, userID string) (*domain.Project, error)
	GetProject(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Project, error)
	CountProjects(ctx context.Context, db *gorm.DB, userID string) (int64, error)
	ListProjectsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Project, error)
	DeleteProjectCascade(ctx context.Context, db *gorm.DB, id, userID string) error
}

// ProjectService provides project lifecycle operations.
type ProjectService struct {
	DB   *gorm.DB
	Repo ProjectRepo
}

// NewProjectService constructs a ProjectService.
func NewProjectService(db *gorm.DB, r ProjectRepo) *ProjectService {
	return &ProjectService{DB: db, Repo: r}
}

// CreatedProject pairs a new project with any achievements its creation
// unlocked.
type CreatedProject struct {
	Project         *domain.Project
	NewAchievements []string
}

// Create inserts a project with the placeholder name, then evaluates the
// project-count achievement thresholds against the updated total. The
// grant is a set union on the user row; re-granting is a no-op.
func (s *ProjectService) Create(ctx context.Context, userID string) (*CreatedProject, error) {
	p, err := s.Repo.CreateProject(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	total, err := s.Repo.CountProjects(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	satisfied := economy.EvaluateProjectCount(total)
	var granted []string
	if len(satisfied) > 0 {
		_, err := mutateUser(ctx, s.DB, userID, func(u *domain.User) error {
			granted = granted[:0]
			for _, id := range satisfied {
				if !u.Achievements.Has(id) {
					granted = append(granted, id)
				}
			}
			u.Achievements = u.Achievements.Union(satisfied)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return &CreatedProject{Project: p, NewAchievements: granted}, nil
}

// Get returns a project owned by userID, or ErrProjectNotFound.
func (s *ProjectService) Get(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	p, err := s.Repo.GetProject(ctx, s.DB, projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListPage returns a page of the user's projects and the total count.
// Invalid page/pageSize values fall back to defaults.
func (s *ProjectService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Project, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountProjects(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Project{}, 0, nil
	}

	items, err := s.Repo.ListProjectsPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}

// ListMessagesPage returns a page of a project's messages in thread order
// and the total count. Ownership is checked first so an unowned project is
// indistinguishable from a missing one.
func (s *ProjectService) ListMessagesPage(ctx context.Context, userID, projectID string, page, pageSize int) ([]domain.ChatMessage, int64, error) {
	if _, err := s.Get(ctx, userID, projectID); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	db := s.DB.WithContext(ctx)
	total, err := repo.CountMessages(db, projectID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.ChatMessage{}, 0, nil
	}

	items, err := repo.ListMessagesPage(db, projectID, offset, pageSize)
	return items, total, err
}

// Delete removes a project owned by userID and all of its messages,
// children first. An unowned or missing project is ErrProjectNotFound.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID string) error {
	err := s.Repo.DeleteProjectCascade(ctx, s.DB, projectID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProjectNotFound
	}
	return err
}

// projectRepoGorm adapts the package-level repo functions to ProjectRepo.
type projectRepoGorm struct{}

// NewProjectRepo returns the GORM-backed ProjectRepo.
func NewProjectRepo() ProjectRepo { return projectRepoGorm{} }

func (projectRepoGorm) CreateProject(ctx context.Context, db *gorm.DB, userID string) (*domain.Project, error) {
	return repo.CreateProject(ctx, db, userID)
}

func (projectRepoGorm) GetProject(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Project, error) {
	return repo.GetProject(ctx, db, id, userID)
}

func (projectRepoGorm) CountProjects(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	return repo.CountProjects(ctx, db, userID)
}

func (projectRepoGorm) ListProjectsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Project, error) {
	return repo.ListProjectsPage(ctx, db, userID, offset, limit)
}

func (projectRepoGorm) DeleteProjectCascade(ctx context.Context, db *gorm.DB, id, userID string) error {
	return repo.DeleteProjectCascade(ctx, db, id, userID)
}
