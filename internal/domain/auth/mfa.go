package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"gdp/internal/platform/store"
)

const mfaIssuer = "GDP Nómina"

var (
	ErrMFARequired    = errors.New("mfa code required")
	ErrMFAInvalid     = errors.New("invalid mfa code")
	ErrMFANotSetUp    = errors.New("mfa setup required")
	ErrMFAUnavailable = errors.New("mfa requires an encryption key")
)

type MFASetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
}

// SetupMFA stores a fresh TOTP secret for the user, disabled until EnableMFA confirms a
// code generated from it.
func (s *Service) SetupMFA(ctx context.Context, userID string) (MFASetup, error) {
	if !s.sealer.Configured() {
		return MFASetup{}, ErrMFAUnavailable
	}
	user, err := s.user(ctx, userID)
	if err != nil {
		return MFASetup{}, err
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      mfaIssuer,
		AccountName: user.Username,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return MFASetup{}, fmt.Errorf("generate mfa secret: %w", err)
	}
	sealed, err := s.sealer.EncryptString(key.Secret())
	if err != nil {
		return MFASetup{}, fmt.Errorf("encrypt mfa secret: %w", err)
	}
	user.MFASecretEnc = sealed
	user.MFAEnabled = false
	if _, err := s.users.Update(ctx, user); err != nil {
		return MFASetup{}, err
	}
	return MFASetup{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

func (s *Service) EnableMFA(ctx context.Context, userID, code string) error {
	return s.setMFA(ctx, userID, code, true)
}

func (s *Service) DisableMFA(ctx context.Context, userID, code string) error {
	return s.setMFA(ctx, userID, code, false)
}

func (s *Service) setMFA(ctx context.Context, userID, code string, enabled bool) error {
	if !s.sealer.Configured() {
		return ErrMFAUnavailable
	}
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.checkCode(user, code); err != nil {
		return err
	}
	user.MFAEnabled = enabled
	_, err = s.users.Update(ctx, user)
	return err
}

func (s *Service) checkCode(user User, code string) error {
	if len(user.MFASecretEnc) == 0 {
		return ErrMFANotSetUp
	}
	secret, err := s.sealer.DecryptString(user.MFASecretEnc)
	if err != nil {
		return fmt.Errorf("decrypt mfa secret: %w", err)
	}
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, s.now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil || !ok {
		return ErrMFAInvalid
	}
	return nil
}

func (s *Service) user(ctx context.Context, id string) (User, error) {
	user, err := s.users.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	return user, err
}
