package service

import (
	"errors"
	"fmt"
	"time"

	"orientation-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "orientation-service"

type Claims struct {
	UserID    string      `json:"userId"`
	Email     string      `json:"email"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Role      models.Role `json:"role"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secret []byte
	expiry time.Duration
}

func NewJWTService(secret string, expiry time.Duration) *JWTService {
	return &JWTService{secret: []byte(secret), expiry: expiry}
}

func (j *JWTService) Expiry() time.Duration {
	return j.expiry
}

// GenerateToken signs a token for user bound to sessionID through the jti claim.
func (j *JWTService) GenerateToken(user *models.User, sessionID string, now time.Time) (string, time.Time, error) {
	if len(j.secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret is not configured")
	}
	expiresAt := now.Add(j.expiry)
	claims := Claims{
		UserID:    user.ID.Hex(),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    tokenIssuer,
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("error generate token string: %w", err)
	}
	return signed, expiresAt, nil
}

func (j *JWTService) ParseToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: token is required", ErrUnauthenticated)
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	}
	return claims, nil
}
