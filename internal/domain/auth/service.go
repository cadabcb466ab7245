package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cryptoutil "gdp/internal/platform/crypto"
	"gdp/internal/platform/store"
	"gdp/internal/platform/validate"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
)

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username" validate:"required"`
	PasswordHash string `json:"passwordHash" validate:"required"`
	Permission   string `json:"permission"`
	MFAEnabled   bool   `json:"mfaEnabled"`
	MFASecretEnc []byte `json:"mfaSecretEnc,omitempty"`
}

func (u User) Validate() error {
	issues := validate.Struct(u)
	if !ValidPermission(u.Permission) {
		issues.Add("permission", "must be all or mi_heladito_only")
	}
	return issues.Err()
}

type Profile struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Permission string `json:"permission"`
	MFAEnabled bool   `json:"mfaEnabled"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      Profile   `json:"user"`
}

type Service struct {
	users  *store.Collection[User]
	sealer *cryptoutil.Service
	secret string
	ttl    time.Duration
	now    func() time.Time
}

// NewService signs tokens with secret. sealer encrypts TOTP secrets; without a configured
// key second factors cannot be set up.
func NewService(repo store.Repository, sealer *cryptoutil.Service, secret string, ttl time.Duration) *Service {
	return &Service{
		users:  store.NewCollection(repo, store.AppUsers, func(u *User) *string { return &u.ID }),
		sealer: sealer,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *Service) Secret() string {
	return s.secret
}

func (s *Service) findByUsername(ctx context.Context, username string) (User, bool, error) {
	all, err := s.users.All(ctx)
	if err != nil {
		return User{}, false, err
	}
	for _, u := range all {
		if strings.EqualFold(u.Username, username) {
			return u, true, nil
		}
	}
	return User{}, false, nil
}

// Login checks the credentials, and the TOTP code for users with a second factor, and
// issues a signed token carrying the user's permission.
func (s *Service) Login(ctx context.Context, username, password, mfaCode string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}
	user, ok, err := s.findByUsername(ctx, username)
	if err != nil {
		return Session{}, fmt.Errorf("load users: %w", err)
	}
	if !ok || CheckPassword(user.PasswordHash, password) != nil {
		return Session{}, ErrInvalidCredentials
	}
	if user.MFAEnabled {
		if strings.TrimSpace(mfaCode) == "" {
			return Session{}, ErrMFARequired
		}
		if err := s.checkCode(user, mfaCode); err != nil {
			return Session{}, err
		}
	}
	token, expires, err := GenerateToken(s.secret, Claims{UserID: user.ID, Username: user.Username, Permission: user.Permission}, s.ttl)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Token: token, ExpiresAt: expires, User: profile(user)}, nil
}

// EnsureUser creates the user unless the username exists. It reports whether a user was
// created.
func (s *Service) EnsureUser(ctx context.Context, username, password, permission string) (bool, error) {
	_, ok, err := s.findByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("load users: %w", err)
	}
	if ok {
		return false, nil
	}
	_, err = s.CreateUser(ctx, username, password, permission)
	return err == nil, err
}

func (s *Service) CreateUser(ctx context.Context, username, password, permission string) (Profile, error) {
	username = strings.TrimSpace(username)
	var issues validate.Issues
	if username == "" {
		issues.Add("username", "is required")
	}
	if len(password) < 8 {
		issues.Add("password", "must be at least 8 characters")
	}
	if err := issues.Err(); err != nil {
		return Profile{}, err
	}
	if _, ok, err := s.findByUsername(ctx, username); err != nil {
		return Profile{}, fmt.Errorf("load users: %w", err)
	} else if ok {
		return Profile{}, ErrUsernameTaken
	}
	hash, err := HashPassword(password)
	if err != nil {
		return Profile{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.users.Create(ctx, User{Username: username, PasswordHash: hash, Permission: permission})
	if err != nil {
		return Profile{}, err
	}
	return profile(user), nil
}

func (s *Service) Profile(ctx context.Context, id string) (Profile, error) {
	user, err := s.user(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	return profile(user), nil
}

func profile(u User) Profile {
	return Profile{ID: u.ID, Username: u.Username, Permission: u.Permission, MFAEnabled: u.MFAEnabled}
}
