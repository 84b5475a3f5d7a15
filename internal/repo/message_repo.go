// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// ChatMessage model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kawanlabs/kawan-backend/internal/domain"
)

// CreateMessage inserts a new message row. Model turns pass the initiating
// user's id as userID.
func CreateMessage(db *gorm.DB, projectID, userID, role, content string, imageMIME string, imageData []byte) (*domain.ChatMessage, error) {
	m := &domain.ChatMessage{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		ImageMIME: imageMIME,
		ImageData: imageData,
		CreatedAt: time.Now().UTC(),
	}
	return m, db.Create(m).Error
}

// ListMessages returns a project's messages ordered deterministically
// (CreatedAt ASC, ID ASC). A limit <= 0 returns the full history.
func ListMessages(db *gorm.DB, projectID string, limit int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	q := db.Where("project_id = ?", projectID).Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountMessages uses a raw COUNT so a missing table surfaces as an error.
func CountMessages(db *gorm.DB, projectID string) (int64, error) {
	var total int64
	err := db.Raw("SELECT COUNT(*) FROM chat_messages WHERE project_id = ?", projectID).Scan(&total).Error
	return total, err
}

// ListMessagesPage returns a paginated slice ordered (CreatedAt ASC, ID ASC).
func ListMessagesPage(db *gorm.DB, projectID string, offset, limit int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := db.
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetMessage fetches a message by ID within a project, or ErrNotFound.
func GetMessage(db *gorm.DB, projectID, id string) (*domain.ChatMessage, error) {
	var m domain.ChatMessage
	if err := db.Where("id = ? AND project_id = ?", id, projectID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMessageContent replaces a message's content in place, keeping its
// identity and position in the ordering. Used for user-message edits and
// model-message regeneration.
func UpdateMessageContent(db *gorm.DB, id, content string) error {
	res := db.Model(&domain.ChatMessage{}).
		Where("id = ?", id).
		Updates(map[string]any{"content": content, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteMessagesAfter removes every message in the project that follows
// the given message in (created_at, id) order. Used to truncate history
// when a user edits a past turn before resending.
func DeleteMessagesAfter(db *gorm.DB, projectID string, after *domain.ChatMessage) error {
	return db.
		Where("project_id = ? AND (created_at > ? OR (created_at = ? AND id > ?))",
			projectID, after.CreatedAt, after.CreatedAt, after.ID).
		Delete(&domain.ChatMessage{}).Error
}

// DeleteMessagesForProjects removes all messages under the given project
// ids. Used by account deletion cascades.
func DeleteMessagesForProjects(ctx context.Context, db *gorm.DB, projectIDs []string) error {
	if len(projectIDs) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Where("project_id IN ?", projectIDs).
		Delete(&domain.ChatMessage{}).Error
}

// LastModelMessage returns the most recent model-authored message in a
// project, or ErrNotFound when the project has none.
func LastModelMessage(db *gorm.DB, projectID string) (*domain.ChatMessage, error) {
	var m domain.ChatMessage
	err := db.
		Where("project_id = ? AND role = ?", projectID, domain.RoleModel).
		Order("created_at DESC, id DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}
