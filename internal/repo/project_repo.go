// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Project
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making
// them safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kawanlabs/kawan-backend/internal/domain"
)

// CreateProject inserts a new project row owned by userID with the
// placeholder name. The project ID is a randomly generated UUID.
func CreateProject(ctx context.Context, db *gorm.DB, userID string) (*domain.Project, error) {
	p := &domain.Project{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      domain.PlaceholderProjectName,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetProject fetches a single project by its ID and owner. If the record
// does not exist or belongs to another user, it returns ErrNotFound.
func GetProject(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Project, error) {
	var p domain.Project
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CountProjects returns the total number of projects owned by userID.
func CountProjects(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Project{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListProjectsPage returns a paginated slice of projects for userID,
// ordered by creation time descending. Use CountProjects to obtain the
// total for pagination metadata.
func ListProjectsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Project, error) {
	var out []domain.Project
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateProjectName renames a project, enforcing ownership. Returns
// ErrNotFound when no row is affected.
func UpdateProjectName(ctx context.Context, db *gorm.DB, id, userID, name string) error {
	res := db.WithContext(ctx).
		Model(&domain.Project{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteProjectCascade removes a project and all of its messages in one
// transaction. Messages go first so a partial failure can never leave
// orphaned rows under a missing parent.
func DeleteProjectCascade(ctx context.Context, db *gorm.DB, id, userID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&domain.ChatMessage{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Project{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListProjectIDs returns the ids of every project owned by userID. Used by
// account deletion to cascade message removal.
func ListProjectIDs(ctx context.Context, db *gorm.DB, userID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.Project{}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error
	return ids, err
}
