package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kawanlabs/kawan-backend/internal/domain"
	"github.com/kawanlabs/kawan-backend/internal/economy"
	"github.com/kawanlabs/kawan-backend/internal/repo"
)

const testPassword = "correct horse battery"

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(newServiceDB(t), LogMailer{}, "test-secret", time.Hour)
}

// registerAndVerify walks a fresh account through the full activation flow.
func registerAndVerify(t *testing.T, svc *AuthService, email string) *domain.User {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.Register(ctx, email, "ayu", testPassword); err != nil {
		t.Fatalf("Register: %v", err)
	}
	stored, err := repo.GetUserByEmail(ctx, svc.DB, email)
	if err != nil {
		t.Fatalf("load registered user: %v", err)
	}
	u, err := svc.Verify(ctx, email, stored.OTPCode)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	return u
}

func TestRegister_Validation(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "not-an-email", "ayu", testPassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("bad email err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Register(ctx, "ayu@example.com", "", testPassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("blank username err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Register(ctx, "ayu@example.com", "ayu", "short"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("short password err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegister_CreatesUnverifiedAccount(t *testing.T) {
	svc := newAuthService(t)
	u, err := svc.Register(context.Background(), "  Ayu@Example.com ", "ayu", testPassword)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "ayu@example.com" {
		t.Errorf("email = %q, want normalized", u.Email)
	}
	if u.Verified {
		t.Error("account verified before OTP redemption")
	}
	if u.Credits != 0 {
		t.Errorf("credits = %d, want 0 before activation", u.Credits)
	}
	if u.OTPCode == "" || len(u.OTPCode) != 6 {
		t.Errorf("otp = %q, want 6 digits", u.OTPCode)
	}
	if u.PasswordHash == testPassword {
		t.Error("password stored in plaintext")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "ayu@example.com", "ayu", testPassword); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, "AYU@example.com", "other", testPassword); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate err = %v, want ErrEmailTaken", err)
	}
}

func TestVerify_ActivatesAndSeedsStartingCredits(t *testing.T) {
	svc := newAuthService(t)
	u := registerAndVerify(t, svc, "ayu@example.com")

	if !u.Verified {
		t.Error("account not verified")
	}
	if u.Credits != economy.StartingCredits {
		t.Errorf("credits = %d, want starting grant %d", u.Credits, economy.StartingCredits)
	}
	if u.OTPCode != "" || u.OTPExpiresAt != nil {
		t.Error("redeemed OTP not cleared")
	}
}

func TestVerify_Rejections(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "ayu@example.com", "ayu", testPassword); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Verify(ctx, "ayu@example.com", "000000"); !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("wrong code err = %v, want ErrInvalidOTP", err)
	}
	if _, err := svc.Verify(ctx, "nobody@example.com", "123456"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown email err = %v, want ErrUserNotFound", err)
	}
}

func TestVerify_ExpiredOTP(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "ayu@example.com", "ayu", testPassword); err != nil {
		t.Fatalf("Register: %v", err)
	}
	stored, _ := repo.GetUserByEmail(ctx, svc.DB, "ayu@example.com")

	past := time.Now().UTC().Add(-time.Minute)
	stored.OTPExpiresAt = &past
	if err := repo.SaveUser(ctx, svc.DB, stored); err != nil {
		t.Fatalf("age the otp: %v", err)
	}

	if _, err := svc.Verify(ctx, "ayu@example.com", stored.OTPCode); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expired code err = %v, want ErrInvalidOTP", err)
	}
}

func TestVerify_CannotSeedGrantTwice(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "ayu@example.com", "ayu", testPassword); err != nil {
		t.Fatalf("Register: %v", err)
	}
	stored, _ := repo.GetUserByEmail(ctx, svc.DB, "ayu@example.com")
	code := stored.OTPCode

	if _, err := svc.Verify(ctx, "ayu@example.com", code); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if _, err := svc.Verify(ctx, "ayu@example.com", code); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("second verify err = %v, want ErrInvalidOTP", err)
	}
	after, _ := repo.GetUserByEmail(ctx, svc.DB, "ayu@example.com")
	if after.Credits != economy.StartingCredits {
		t.Errorf("credits = %d, grant seeded more than once", after.Credits)
	}
}

func TestLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	u := registerAndVerify(t, svc, "ayu@example.com")

	token, got, err := svc.Login(ctx, "ayu@example.com", testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("login user = %q, want %q", got.ID, u.ID)
	}

	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Subject != u.ID {
		t.Errorf("subject = %q, want user id", claims.Subject)
	}

	if _, _, err := svc.Login(ctx, "ayu@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", testPassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_UnverifiedAccount(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "ayu@example.com", "ayu", testPassword); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svc.Login(ctx, "ayu@example.com", testPassword); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("err = %v, want ErrNotVerified", err)
	}
}

func TestDeleteAccount_Cascades(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	u := registerAndVerify(t, svc, "ayu@example.com")

	p, _ := repo.CreateProject(ctx, svc.DB, u.ID)
	_, _ = repo.CreateMessage(svc.DB, p.ID, u.ID, domain.RoleUser, "hi", "", nil)
	_, _ = repo.CreateCustomMode(ctx, svc.DB, u.ID, "Pirate", "You answer like a pirate.")

	if err := svc.DeleteAccount(ctx, u.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	if _, err := repo.GetUser(ctx, svc.DB, u.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Error("user survived deletion")
	}
	if _, err := repo.GetProject(ctx, svc.DB, p.ID, u.ID); err == nil {
		t.Error("project survived deletion")
	}
	if n, _ := repo.CountMessages(svc.DB, p.ID); n != 0 {
		t.Errorf("messages survived deletion: %d", n)
	}
	if cms, _ := repo.ListCustomModes(ctx, svc.DB, u.ID); len(cms) != 0 {
		t.Errorf("custom modes survived deletion: %+v", cms)
	}
}

func TestProfile(t *testing.T) {
	svc := newAuthService(t)
	u := registerAndVerify(t, svc, "ayu@example.com")

	got, err := svc.Profile(context.Background(), u.ID)
	if err != nil || got.ID != u.ID {
		t.Fatalf("Profile = %+v, %v", got, err)
	}
	if _, err := svc.Profile(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing profile err = %v, want ErrUserNotFound", err)
	}
}
