package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"

	cryptoutil "gdp/internal/platform/crypto"
	"gdp/internal/platform/store"
	"gdp/internal/platform/validate"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("super-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if err := CheckPassword(hash, "super-secret"); err != nil {
		t.Fatalf("expected password to match, got %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	claims := Claims{UserID: "u1", Username: "heladito", Permission: PermissionHeladitoOnly}
	token, expires, err := GenerateToken("test-secret", claims, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Fatalf("expected future expiry, got %v", expires)
	}
	parsed, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if parsed.UserID != "u1" || parsed.Permission != PermissionHeladitoOnly {
		t.Fatalf("claims mismatch: %+v", parsed)
	}
	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestAllows(t *testing.T) {
	cases := []struct {
		permission, area string
		want             bool
	}{
		{PermissionAll, "payroll", true},
		{PermissionHeladitoOnly, "heladito", true},
		{PermissionHeladitoOnly, "auth", true},
		{PermissionHeladitoOnly, "payroll", false},
		{"root", "heladito", false},
	}
	for _, c := range cases {
		if got := Allows(c.permission, c.area); got != c.want {
			t.Fatalf("Allows(%q, %q) = %v, want %v", c.permission, c.area, got, c.want)
		}
	}
}

func TestLoginFlow(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory(), nil, "secret", time.Hour)

	created, err := svc.EnsureUser(ctx, "admin", "password123", PermissionAll)
	if err != nil || !created {
		t.Fatalf("ensure user = %v, %v", created, err)
	}
	created, err = svc.EnsureUser(ctx, "ADMIN", "other-pass", PermissionAll)
	if err != nil || created {
		t.Fatalf("second ensure should be a no-op, got %v, %v", created, err)
	}

	session, err := svc.Login(ctx, "admin", "password123", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.User.Permission != PermissionAll || session.Token == "" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if _, err := svc.Login(ctx, "admin", "nope", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "ghost", "password123", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	_, err = svc.CreateUser(ctx, "x", "short", PermissionAll)
	if _, ok := validate.AsError(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = svc.CreateUser(ctx, "y", "long-enough", "superuser")
	if _, ok := validate.AsError(err); !ok {
		t.Fatalf("expected validation error for permission, got %v", err)
	}
}

func TestMFAFlow(t *testing.T) {
	ctx := context.Background()
	sealer, err := cryptoutil.New(strings.Repeat("cd", 32))
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}
	svc := NewService(store.NewMemory(), sealer, "secret", time.Hour)
	if _, err := svc.EnsureUser(ctx, "admin", "password123", PermissionAll); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	session, err := svc.Login(ctx, "admin", "password123", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	userID := session.User.ID

	setup, err := svc.SetupMFA(ctx, userID)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if setup.Secret == "" || !strings.HasPrefix(setup.OTPAuthURL, "otpauth://") {
		t.Fatalf("unexpected setup: %+v", setup)
	}
	// Not enforced until a code is confirmed.
	if _, err := svc.Login(ctx, "admin", "password123", ""); err != nil {
		t.Fatalf("login before enable: %v", err)
	}
	if err := svc.EnableMFA(ctx, userID, "000000x"); !errors.Is(err, ErrMFAInvalid) {
		t.Fatalf("expected ErrMFAInvalid, got %v", err)
	}
	code, err := totp.GenerateCode(setup.Secret, time.Now().UTC())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if err := svc.EnableMFA(ctx, userID, code); err != nil {
		t.Fatalf("enable: %v", err)
	}

	if _, err := svc.Login(ctx, "admin", "password123", ""); !errors.Is(err, ErrMFARequired) {
		t.Fatalf("expected ErrMFARequired, got %v", err)
	}
	if _, err := svc.Login(ctx, "admin", "password123", "12345x"); !errors.Is(err, ErrMFAInvalid) {
		t.Fatalf("expected ErrMFAInvalid, got %v", err)
	}
	if _, err := svc.Login(ctx, "admin", "password123", code); err != nil {
		t.Fatalf("login with code: %v", err)
	}
	profile, err := svc.Profile(ctx, userID)
	if err != nil || !profile.MFAEnabled {
		t.Fatalf("profile = %+v, %v", profile, err)
	}
}

func TestMFANeedsEncryptionKey(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory(), nil, "secret", time.Hour)
	if _, err := svc.EnsureUser(ctx, "admin", "password123", PermissionAll); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	session, err := svc.Login(ctx, "admin", "password123", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.SetupMFA(ctx, session.User.ID); !errors.Is(err, ErrMFAUnavailable) {
		t.Fatalf("expected ErrMFAUnavailable, got %v", err)
	}
}
