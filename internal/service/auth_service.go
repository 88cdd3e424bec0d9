package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/farmsight/backend/internal/domain"
)

// ErrInvalidToken is returned for malformed, expired, or badly signed tokens.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// Claims defines the JWT payload carried by session tokens
type Claims struct {
	UserID string `json:"uid"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// AuthService handles registration, login, and session tokens
type AuthService struct {
	repo      DataRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(repo DataRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Register creates a new account and returns it with a session token
func (s *AuthService) Register(ctx context.Context, name, email, phone, password string) (domain.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("auth: failed to hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Phone:        phone,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return domain.User{}, "", domain.ErrEmailTaken
		}
		return domain.User{}, "", fmt.Errorf("auth: failed to create user: %w", err)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return domain.User{}, "", err
	}

	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh session token.
// Unknown email and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", domain.ErrInvalidCredentials
		}
		return domain.User{}, "", fmt.Errorf("auth: failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return domain.User{}, "", err
	}

	return user, token, nil
}

// IssueToken signs a new session token for the user
func (s *AuthService) IssueToken(user domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a session token and returns its claims
func (s *AuthService) ParseToken(tokenString string) (Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}

// CurrentUser resolves the account behind a session token
func (s *AuthService) CurrentUser(ctx context.Context, tokenString string) (domain.User, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, ErrInvalidToken
		}
		return domain.User{}, fmt.Errorf("auth: failed to load user: %w", err)
	}

	return user, nil
}
