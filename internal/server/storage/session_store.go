package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/thermolog/thermolog/pkg/models"
	"github.com/thermolog/thermolog/pkg/utils"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps auth sessions in Redis so the server holds no
// in-memory state across requests. Keys expire with the session.
type SessionStore struct {
	rdb        *redis.Client
	pendingTTL time.Duration
	sessionTTL time.Duration
}

func NewSessionStore(rdb *redis.Client, pendingTTL, sessionTTL time.Duration) *SessionStore {
	return &SessionStore{
		rdb:        rdb,
		pendingTTL: pendingTTL,
		sessionTTL: sessionTTL,
	}
}

// CreatePending starts a pending session (password verified, OTP
// outstanding) under a fresh token.
func (s *SessionStore) CreatePending(ctx context.Context, user *models.User) (string, error) {
	session := &models.Session{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Pending:  true,
	}
	return s.create(ctx, session, s.pendingTTL)
}

// Get returns the session for a token, or nil if the token is unknown or
// expired.
func (s *SessionStore) Get(ctx context.Context, token string) (*models.Session, error) {
	data, err := s.rdb.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

// Promote turns a pending session into an authenticated one. The pending
// token is destroyed and a new token issued, so a token captured before
// authentication never names an authenticated session.
func (s *SessionStore) Promote(ctx context.Context, pendingToken string, session *models.Session) (string, error) {
	if err := s.Delete(ctx, pendingToken); err != nil {
		return "", err
	}

	promoted := *session
	promoted.Pending = false
	return s.create(ctx, &promoted, s.sessionTTL)
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) create(ctx context.Context, session *models.Session, ttl time.Duration) (string, error) {
	token, err := utils.GenerateSessionToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.rdb.Set(ctx, sessionKeyPrefix+token, data, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return token, nil
}
