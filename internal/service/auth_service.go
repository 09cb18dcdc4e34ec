package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"orientation-service/internal/metrics"
	"orientation-service/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxFailedLogins = 5
	LockoutWindow   = 10 * time.Minute
)

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type AuthService struct {
	users    UserStore
	sessions SessionStore
	jwt      *JWTService
	now      func() time.Time
}

func NewAuthService(users UserStore, sessions SessionStore, jwt *JWTService) *AuthService {
	return &AuthService{users: users, sessions: sessions, jwt: jwt, now: time.Now}
}

// Login checks the credentials and opens a session. Repeated failures lock the
// email out for LockoutWindow.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	failed, err := s.sessions.FailedLogins(ctx, email)
	if err != nil {
		log.Printf("Warning: could not read failed logins for %s: %v", email, err)
	}
	if failed >= MaxFailedLogins {
		metrics.LoginAttempts.WithLabelValues("locked").Inc()
		return nil, fmt.Errorf("%w: too many failed attempts, try again later", ErrUnauthorized)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !checkPassword(user.PasswordHash, password) {
		if _, err := s.sessions.RecordFailedLogin(ctx, email, LockoutWindow); err != nil {
			log.Printf("Warning: could not record failed login for %s: %v", email, err)
		}
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}

	if err := s.sessions.ResetFailedLogins(ctx, email); err != nil {
		log.Printf("Warning: could not reset failed logins for %s: %v", email, err)
	}

	now := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID.Hex(),
		Role:      user.Role,
		UserAgent: userAgent,
		CreatedAt: now,
	}
	token, expiresAt, err := s.jwt.GenerateToken(user, session.ID, now)
	if err != nil {
		return nil, err
	}
	session.ExpiresAt = expiresAt
	if err := s.sessions.Save(ctx, session, s.jwt.Expiry()); err != nil {
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) Logout(ctx context.Context, principal *models.Principal) error {
	if principal == nil {
		return ErrUnauthenticated
	}
	return s.sessions.Delete(ctx, principal.SessionID)
}

// Authenticate resolves a bearer token into the principal it was issued to.
// Tokens whose session was closed are rejected even before they expire, and
// the role is read from the stored user so role changes and deletions apply
// to tokens already issued.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Principal, error) {
	claims, err := s.jwt.ParseToken(token)
	if err != nil {
		return nil, err
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject", ErrUnauthenticated)
	}

	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != claims.UserID {
		return nil, fmt.Errorf("%w: session expired", ErrUnauthenticated)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
	}

	return &models.Principal{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		SessionID: claims.ID,
	}, nil
}
