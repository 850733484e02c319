package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/thermolog/thermolog/internal/server/storage"
	"github.com/thermolog/thermolog/pkg/models"
	"github.com/thermolog/thermolog/pkg/utils"
)

// AuthService drives the two-step login flow:
// anonymous -> pending (password verified, code emailed) -> authenticated.
type AuthService struct {
	userRepo  *storage.UserRepository
	otpRepo   *storage.OTPRepository
	sessions  *storage.SessionStore
	notifier  Notifier
	otpExpiry time.Duration
}

func NewAuthService(
	userRepo *storage.UserRepository,
	otpRepo *storage.OTPRepository,
	sessions *storage.SessionStore,
	notifier Notifier,
	otpExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		otpRepo:   otpRepo,
		sessions:  sessions,
		notifier:  notifier,
		otpExpiry: otpExpiry,
	}
}

// AuthenticatePassword checks a username/password pair. Unknown usernames
// and wrong passwords both return ErrInvalidCredentials so the endpoint
// cannot be used to enumerate accounts.
func (s *AuthService) AuthenticatePassword(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login verifies the password, issues a one-time code and opens a pending
// session. The returned token only grants access to the verify step.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, int, error) {
	user, err := s.AuthenticatePassword(ctx, username, password)
	if err != nil {
		return "", 0, err
	}

	if err := s.issueCode(ctx, user); err != nil {
		return "", 0, err
	}

	token, err := s.sessions.CreatePending(ctx, user)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create pending session: %w", err)
	}

	return token, int(s.otpExpiry.Seconds()), nil
}

// issueCode generates and stores a fresh 6-digit code. Any outstanding
// unconsumed codes for the user are invalidated first, so only the latest
// code is ever live. Delivery failure is logged and not surfaced; the user
// can retry login to get a new code.
func (s *AuthService) issueCode(ctx context.Context, user *models.User) error {
	code, err := utils.GenerateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	if err := s.otpRepo.InvalidateUserCodes(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to invalidate previous codes: %w", err)
	}

	otpCode := &models.OTPCode{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(s.otpExpiry),
	}
	if err := s.otpRepo.CreateCode(ctx, otpCode); err != nil {
		return fmt.Errorf("failed to save code: %w", err)
	}

	if err := s.notifier.SendOTPCode(user.Email, code); err != nil {
		log.Printf("Failed to send OTP email to user %s: %v", user.ID, err)
	}

	return nil
}

// VerifyCode finalizes a pending session. On success the pending token is
// destroyed and a fresh authenticated token issued. On a bad code the
// pending session survives so the user can retry until the code expires.
func (s *AuthService) VerifyCode(ctx context.Context, pendingToken, code string) (string, *models.Session, error) {
	session, err := s.sessions.Get(ctx, pendingToken)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil || !session.Pending {
		return "", nil, ErrUnauthorized
	}

	if !utils.IsValidOTPCode(code) {
		return "", nil, ErrCodeInvalid
	}

	otpCode, err := s.otpRepo.GetValidCode(ctx, session.UserID, code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up code: %w", err)
	}
	if otpCode == nil {
		return "", nil, ErrCodeInvalid
	}

	// Conditional update: only one concurrent verification can win.
	consumed, err := s.otpRepo.Consume(ctx, otpCode.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to consume code: %w", err)
	}
	if !consumed {
		return "", nil, ErrCodeInvalid
	}

	token, err := s.sessions.Promote(ctx, pendingToken, session)
	if err != nil {
		return "", nil, fmt.Errorf("failed to promote session: %w", err)
	}

	authenticated := *session
	authenticated.Pending = false
	return token, &authenticated, nil
}

// Logout destroys the session for a token. Unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}
