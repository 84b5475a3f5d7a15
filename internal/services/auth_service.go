// Package services – AuthService
//
// This file implements the thin account lifecycle around the economy:
// registration creates an unverified user and dispatches an OTP, OTP
// verification activates the account and seeds the starting credit grant,
// login issues a JWT. Credential mechanics stay deliberately minimal; the
// interesting part is the state the lifecycle establishes for the ledger
// (zeroed balances with explicit schema defaults, empty achievement set,
// starting credits exactly once).
package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kawanlabs/kawan-backend/internal/domain"
	"github.com/kawanlabs/kawan-backend/internal/economy"
	"github.com/kawanlabs/kawan-backend/internal/repo"
)

// otpTTL bounds how long a registration code stays redeemable.
const otpTTL = 15 * time.Minute

// AuthService owns account registration, activation, and login.
type AuthService struct {
	DB     *gorm.DB
	Mailer Mailer

	JWTSecret []byte
	JWTTTL    time.Duration
}

// NewAuthService constructs an AuthService with the given signing secret.
func NewAuthService(db *gorm.DB, mailer Mailer, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{DB: db, Mailer: mailer, JWTSecret: []byte(secret), JWTTTL: ttl}
}

// Register creates an unverified account and dispatches the OTP mail.
// Delivery is fire-and-forget: a mail failure never fails registration.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidCredentials)
	}
	if username == "" || len(password) < 8 {
		return nil, fmt.Errorf("%w: username and a password of 8+ chars required", ErrInvalidCredentials)
	}

	if _, err := repo.GetUserByEmail(ctx, s.DB, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	code := generateOTP()
	u, err := repo.CreateUser(ctx, s.DB, email, username, string(hash), code, time.Now().UTC().Add(otpTTL))
	if err != nil {
		return nil, err
	}

	dispatchMail("otp", func() error {
		return s.Mailer.SendOTP(context.Background(), email, code)
	})
	return u, nil
}

// Verify redeems an OTP: the account is activated, the starting credit
// grant is seeded, and the achievement set is initialized. Verifying an
// already-active account is rejected as an invalid code so the grant can
// never be seeded twice.
func (s *AuthService) Verify(ctx context.Context, email, code string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := mutateUserByEmail(ctx, s.DB, email, func(u *domain.User) error {
		if u.Verified {
			return ErrInvalidOTP
		}
		if u.OTPCode == "" || u.OTPCode != strings.TrimSpace(code) {
			return ErrInvalidOTP
		}
		if u.OTPExpiresAt == nil || time.Now().UTC().After(*u.OTPExpiresAt) {
			return ErrInvalidOTP
		}
		u.Verified = true
		u.OTPCode = ""
		u.OTPExpiresAt = nil
		u.Credits = economy.StartingCredits
		u.Achievements = domain.StringSet{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dispatchMail("welcome", func() error {
		return s.Mailer.SendWelcome(context.Background(), u.Email, u.Username)
	})
	return u, nil
}

// Login checks credentials and returns a signed bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !u.Verified {
		return "", nil, ErrNotVerified
	}

	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.JWTTTL)),
	})
	signed, err := token.SignedString(s.JWTSecret)
	if err != nil {
		return "", nil, err
	}
	return signed, u, nil
}

// Profile returns the account record for userID.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// DeleteAccount removes the user and cascades over owned projects and
// their messages: children first, so a partial failure never strands
// rows under a deleted parent.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := repo.ListProjectIDs(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := repo.DeleteMessagesForProjects(ctx, tx, ids); err != nil {
			return err
		}
		if len(ids) > 0 {
			if err := tx.Where("user_id = ?", userID).Delete(&domain.Project{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", userID).Delete(&domain.CustomMode{}).Error; err != nil {
			return err
		}
		return repo.DeleteUser(ctx, tx, userID)
	})
}

// mutateUserByEmail is mutateUser keyed by email instead of id.
func mutateUserByEmail(ctx context.Context, db *gorm.DB, email string, mutate func(*domain.User) error) (*domain.User, error) {
	for attempt := 0; attempt < 2; attempt++ {
		u, err := repo.GetUserByEmail(ctx, db, email)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if err := mutate(u); err != nil {
			return nil, err
		}
		err = repo.SaveUser(ctx, db, u)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, repo.ErrVersionConflict) {
			return nil, err
		}
	}
	return nil, ErrWriteConflict
}

// generateOTP returns a 6-digit numeric code from crypto/rand.
func generateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		n = big.NewInt(424242)
	}
	return fmt.Sprintf("%06d", n.Int64())
}
