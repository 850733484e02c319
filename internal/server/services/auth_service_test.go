package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thermolog/thermolog/internal/server/storage"
	"github.com/thermolog/thermolog/internal/testutil"
	"github.com/thermolog/thermolog/pkg/models"
)

func setupAuthService(t *testing.T, tdb *testutil.TestDB) (*AuthService, func()) {
	t.Helper()

	t.Setenv("SKIP_EMAIL_SEND", "true")

	rdb := testutil.GetTestRedis(t)
	repos := tdb.Repositories()
	sessions := storage.NewSessionStore(rdb, 10*time.Minute, time.Hour)

	// EmailService with nil client - SKIP_EMAIL_SEND prevents actual sending
	emailService := &EmailService{}

	service := NewAuthService(repos.Users, repos.OTPCodes, sessions, emailService, 5*time.Minute)
	return service, func() { rdb.Close() }
}

func TestAuthService_AuthenticatePassword(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	service, cleanup := setupAuthService(t, tdb)
	defer cleanup()

	username := testutil.GenerateTestUsername()
	user := tdb.CreateTestUser(ctx, username, "correct-horse", models.RoleUser)
	defer tdb.DeleteTestUser(ctx, user.ID)

	got, err := service.AuthenticatePassword(ctx, username, "correct-horse")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("user ID mismatch")
	}

	// Wrong password and unknown username must be indistinguishable
	_, wrongPass := service.AuthenticatePassword(ctx, username, "wrong")
	_, unknownUser := service.AuthenticatePassword(ctx, "no-such-"+username, "wrong")
	if !errors.Is(wrongPass, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", wrongPass)
	}
	if !errors.Is(unknownUser, ErrInvalidCredentials) {
		t.Errorf("unknown user: expected ErrInvalidCredentials, got %v", unknownUser)
	}
}

func TestAuthService_LoginVerifyFlow(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	service, cleanup := setupAuthService(t, tdb)
	defer cleanup()

	username := testutil.GenerateTestUsername()
	user := tdb.CreateTestUser(ctx, username, "correct-horse", models.RoleAdmin)
	defer tdb.DeleteTestUser(ctx, user.ID)

	pendingToken, expiresIn, err := service.Login(ctx, username, "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if pendingToken == "" {
		t.Fatal("expected a pending token")
	}
	if expiresIn != 300 {
		t.Errorf("expected 300s expiry, got %d", expiresIn)
	}

	// The pending session must not be authenticated yet
	session, err := service.sessions.Get(ctx, pendingToken)
	if err != nil || session == nil {
		t.Fatalf("Failed to load pending session: %v", err)
	}
	if !session.Pending {
		t.Fatal("session must be pending before verification")
	}

	// Fetch the issued code straight from storage
	var code string
	if err := tdb.DB.GetContext(ctx, &code,
		"SELECT code FROM otp_codes WHERE user_id = $1 AND consumed = false ORDER BY created_at DESC LIMIT 1",
		user.ID); err != nil {
		t.Fatalf("Failed to read issued code: %v", err)
	}

	// Wrong code: rejected, pending session survives
	_, _, err = service.VerifyCode(ctx, pendingToken, "000000")
	if !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid, got %v", err)
	}
	if s, _ := service.sessions.Get(ctx, pendingToken); s == nil || !s.Pending {
		t.Fatal("pending session must survive a failed verification")
	}

	// Correct code: promoted under a fresh token
	authToken, authSession, err := service.VerifyCode(ctx, pendingToken, code)
	if err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	if authToken == pendingToken {
		t.Fatal("authenticated token must differ from the pending token")
	}
	if authSession.Pending {
		t.Fatal("promoted session must not be pending")
	}
	if authSession.Role != models.RoleAdmin {
		t.Errorf("role mismatch: got %q", authSession.Role)
	}

	// The old pending token is dead
	if s, _ := service.sessions.Get(ctx, pendingToken); s != nil {
		t.Fatal("pending token must be destroyed on promotion")
	}

	// The code cannot be replayed on a second pending session
	pendingToken2, _, err := service.Login(ctx, username, "correct-horse")
	if err != nil {
		t.Fatalf("second Login failed: %v", err)
	}
	if _, _, err := service.VerifyCode(ctx, pendingToken2, code); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected consumed code to be rejected, got %v", err)
	}

	service.Logout(ctx, authToken)
	service.sessions.Delete(ctx, pendingToken2)
}

func TestAuthService_VerifyCode_RequiresPendingSession(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	service, cleanup := setupAuthService(t, tdb)
	defer cleanup()

	// Unknown token
	if _, _, err := service.VerifyCode(ctx, "bogus-token", "123456"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown token, got %v", err)
	}
}

func TestAuthService_ReissueInvalidatesOldCode(t *testing.T) {
	tdb := testutil.GetTestDB(t)
	if tdb == nil {
		return
	}
	defer tdb.Close()

	ctx := context.Background()
	service, cleanup := setupAuthService(t, tdb)
	defer cleanup()

	username := testutil.GenerateTestUsername()
	user := tdb.CreateTestUser(ctx, username, "correct-horse", models.RoleUser)
	defer tdb.DeleteTestUser(ctx, user.ID)

	if _, _, err := service.Login(ctx, username, "correct-horse"); err != nil {
		t.Fatalf("first Login failed: %v", err)
	}
	var firstCode string
	if err := tdb.DB.GetContext(ctx, &firstCode,
		"SELECT code FROM otp_codes WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1", user.ID); err != nil {
		t.Fatalf("Failed to read first code: %v", err)
	}

	pendingToken, _, err := service.Login(ctx, username, "correct-horse")
	if err != nil {
		t.Fatalf("second Login failed: %v", err)
	}

	// Only the latest code is live
	if _, _, err := service.VerifyCode(ctx, pendingToken, firstCode); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected invalidated code to be rejected, got %v", err)
	}

	service.sessions.Delete(ctx, pendingToken)
}
