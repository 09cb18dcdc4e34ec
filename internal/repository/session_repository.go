package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"orientation-service/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix     = "session:"
	failedLoginKeyPrefix = "login_fail:"
)

type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func (r *SessionRepository) Save(ctx context.Context, session *models.Session, ttl time.Duration) error {
	val, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("error saving session to cache: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+session.ID, val, ttl).Err(); err != nil {
		return fmt.Errorf("error saving session to cache: %w", err)
	}
	return nil
}

// Get returns nil, nil when the session is unknown or expired.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("error get session in cache: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("error decoding cached session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

// RecordFailedLogin bumps the failure counter for email and restarts its
// expiry window.
func (r *SessionRepository) RecordFailedLogin(ctx context.Context, email string, window time.Duration) (int64, error) {
	key := failedLoginKeyPrefix + strings.ToLower(email)
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("error recording failed login: %w", err)
	}
	return incr.Val(), nil
}

func (r *SessionRepository) FailedLogins(ctx context.Context, email string) (int64, error) {
	n, err := r.client.Get(ctx, failedLoginKeyPrefix+strings.ToLower(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("error get failed login count: %w", err)
	}
	return n, nil
}

func (r *SessionRepository) ResetFailedLogins(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, failedLoginKeyPrefix+strings.ToLower(email)).Err(); err != nil {
		return fmt.Errorf("error resetting failed logins: %w", err)
	}
	return nil
}
