package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Vaishh-Aryaa/CodeInsight/internal/apperror"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/auth"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/model"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/repository"
)

// resetTokenTTL bounds how long a password reset token stays usable.
const resetTokenTTL = 10 * time.Minute

// AuthResult is returned by every operation that establishes a session.
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// AuthService handles signup, login, and the password reset flow.
//
// SECURITY RULES ENFORCED HERE (not in handlers, not in the repository):
//   - Login failures never reveal whether the email exists or the
//     password was wrong: one message for both.
//   - Passwords are only ever stored as bcrypt hashes.
//   - Reset tokens are single-use: consuming one clears it.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// NewAuthService wires an AuthService.
func NewAuthService(users repository.UserRepository, passwords *auth.PasswordService, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// Signup registers a new account and returns a signed session token.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))
	return s.newSession(user)
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("credentials", "email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		// Same message as a bad password — do not leak which emails exist.
		return nil, apperror.Unauthorized("invalid email or password")
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return s.newSession(user)
}

// ForgotPassword issues a short-lived reset token for the account.
// The token is returned to the caller; delivery (email, etc.) is the
// caller's concern.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", apperror.ValidationFailed("email", "email is required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", apperror.NotFound("account", email)
	}

	token, err := randomToken()
	if err != nil {
		return "", fmt.Errorf("generating reset token: %w", err)
	}

	user.ResetToken = token
	user.ResetExpiresAt = time.Now().Add(resetTokenTTL)
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return "", err
	}

	s.logger.Info("password reset requested", slog.String("userID", user.ID))
	return token, nil
}

// ResetPassword consumes a reset token and installs a new password.
// On success the user is logged in immediately.
func (s *AuthService) ResetPassword(ctx context.Context, email, token, newPassword string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || token == "" {
		return nil, apperror.ValidationFailed("token", "email and reset token are required")
	}
	if newPassword == "" {
		return nil, apperror.ValidationFailed("password", "new password is required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Unauthorized("invalid or expired reset token")
	}
	if user.ResetToken == "" || user.ResetToken != token {
		return nil, apperror.Unauthorized("invalid or expired reset token")
	}
	if time.Now().After(user.ResetExpiresAt) {
		return nil, apperror.Unauthorized("invalid or expired reset token")
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	// Single-use: the token is cleared in the same update that installs
	// the new hash.
	user.PasswordHash = hash
	user.ResetToken = ""
	user.ResetExpiresAt = time.Time{}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("password reset completed", slog.String("userID", user.ID))
	return s.newSession(user)
}

// GetUser loads the account behind an authenticated request.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

func (s *AuthService) newSession(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("signing session token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// randomToken produces a 32-hex-char token from a crypto/rand source.
func randomToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
