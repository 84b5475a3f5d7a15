// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User
// model, including the optimistic-concurrency write every economic
// transaction depends on.
//
// Error semantics:
//   - ErrNotFound (gorm.ErrRecordNotFound) when a user does not exist.
//   - ErrVersionConflict when an optimistic write lost the race; callers
//     retry once with a fresh read before surfacing the conflict.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kawanlabs/kawan-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrVersionConflict is returned when an optimistic user write matched no
// row because the version moved underneath it.
var ErrVersionConflict = errors.New("user version conflict")

// CreateUser inserts a new, unverified user row with zeroed balances and
// empty achievement/theme sets. Explicit defaults here replace any ad-hoc
// missing-field backfill at read time.
func CreateUser(ctx context.Context, db *gorm.DB, email, username, passwordHash, otpCode string, otpExpires time.Time) (*domain.User, error) {
	u := &domain.User{
		ID:             uuid.NewString(),
		Email:          email,
		Username:       username,
		PasswordHash:   passwordHash,
		OTPCode:        otpCode,
		OTPExpiresAt:   &otpExpires,
		Level:          1,
		NextLevelExp:   50,
		Achievements:   domain.StringSet{},
		UnlockedThemes: domain.StringSet{},
		CreatedAt:      time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser fetches a user by id, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail fetches a user by email, or ErrNotFound.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveUser persists every mutable field of u with an optimistic version
// check: the UPDATE is scoped to the version the caller read, and the
// stored version is bumped. If the row moved underneath the caller, no row
// matches and ErrVersionConflict is returned and nothing is written.
//
// On success u.Version reflects the committed version.
func SaveUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	readVersion := u.Version
	u.Version = readVersion + 1
	u.UpdatedAt = time.Now().UTC()

	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ? AND version = ?", u.ID, readVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(u)
	if res.Error != nil {
		u.Version = readVersion
		return res.Error
	}
	if res.RowsAffected == 0 {
		u.Version = readVersion
		return ErrVersionConflict
	}
	return nil
}

// DeleteUser removes a user row. Owned projects and messages are deleted
// first by the service layer so no orphans survive a partial failure.
func DeleteUser(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
