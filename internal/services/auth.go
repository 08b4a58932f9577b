package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/authapi/apiserver/internal/auth"
	"github.com/authapi/apiserver/internal/store"
	"github.com/authapi/apiserver/internal/validation"
	"github.com/authapi/apiserver/types"
)

// Expected auth outcomes. Their messages are the user-facing strings; the
// HTTP layer maps them to status codes. ErrInvalidCredentials deliberately
// covers both "no such account" and "wrong password" so responses cannot be
// used to enumerate registered emails.
var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("weak password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepository defines persistence operations needed by the auth service.
type UserRepository interface {
	Exists(ctx context.Context, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(user types.User) (string, error)
}

// AuthService orchestrates validation, credential storage, and token
// issuance. Each call is stateless end-to-end; the only shared state lives
// in the user store.
type AuthService struct {
	repo   UserRepository
	tokens TokenIssuer
}

func NewAuthService(repo UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

// Register validates the request, hashes the password, and persists a new
// account. The store's uniqueness constraint is the final arbiter: the
// Exists pre-check is a fast path, and a duplicate reported by Create
// (a lost race) maps to the same ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (types.AuthResult, error) {
	if req == nil {
		return types.AuthResult{}, ErrInvalidRequest
	}
	if !validation.IsValidEmail(req.Email) {
		return types.AuthResult{}, ErrInvalidEmail
	}
	if !validation.IsStrongPassword(req.Password) {
		return types.AuthResult{}, ErrWeakPassword
	}

	exists, err := s.repo.Exists(ctx, req.Email)
	if err != nil {
		return types.AuthResult{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return types.AuthResult{}, ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return types.AuthResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := types.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return types.AuthResult{}, ErrEmailTaken
		}
		return types.AuthResult{}, fmt.Errorf("failed to create user: %w", err)
	}

	return types.AuthResult{Success: true, Message: "registration succeeded"}, nil
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req *types.LoginRequest) (types.AuthResult, error) {
	if req == nil {
		return types.AuthResult{}, ErrInvalidRequest
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.AuthResult{}, ErrInvalidCredentials
		}
		return types.AuthResult{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return types.AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return types.AuthResult{}, fmt.Errorf("failed to issue token: %w", err)
	}

	return types.AuthResult{Success: true, Token: token}, nil
}
