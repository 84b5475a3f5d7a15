// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for user-owned
// custom AI modes.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kawanlabs/kawan-backend/internal/domain"
)

// CreateCustomMode appends a custom mode to the user's ordered list. The
// position is assigned from the current count inside the surrounding
// transaction, preserving creation order.
func CreateCustomMode(ctx context.Context, db *gorm.DB, userID, name, prompt string) (*domain.CustomMode, error) {
	var count int64
	if err := db.WithContext(ctx).
		Model(&domain.CustomMode{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	cm := &domain.CustomMode{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Prompt:    prompt,
		Position:  int(count),
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(cm).Error; err != nil {
		return nil, err
	}
	return cm, nil
}

// ListCustomModes returns the user's custom modes in creation order.
func ListCustomModes(ctx context.Context, db *gorm.DB, userID string) ([]domain.CustomMode, error) {
	var out []domain.CustomMode
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position ASC, created_at ASC").
		Find(&out).Error
	return out, err
}
