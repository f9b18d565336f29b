package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/taskpad/taskpad-go/internal/crypto"
	"github.com/taskpad/taskpad-go/internal/model"
	"github.com/taskpad/taskpad-go/internal/repository"
)

var (
	ErrNameTooShort       = errors.New("name must be at least 2 characters")
	ErrEmailInvalid       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// forgotPasswordMessage is returned whether or not the email resolves to an
// account, so the endpoint cannot be used to probe for registered addresses.
const forgotPasswordMessage = "If that email is registered, a password reset link has been sent"

// UserStore is the persistence surface AuthService needs.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// AuthService handles signup, login and the password reset flow.
type AuthService struct {
	users  UserStore
	tokens *crypto.TokenManager
	env    string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *crypto.TokenManager, env string) *AuthService {
	return &AuthService{users: users, tokens: tokens, env: env}
}

// Signup validates the registration input, creates the user with a hashed
// password and issues a session token.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (model.AuthData, error) {
	name := strings.TrimSpace(req.Name)
	if utf8.RuneCountInString(name) < 2 {
		return model.AuthData{}, ErrNameTooShort
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return model.AuthData{}, err
	}

	if utf8.RuneCountInString(req.Password) < 6 {
		return model.AuthData{}, ErrPasswordTooShort
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthData{}, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthData{}, ErrEmailTaken
		}
		return model.AuthData{}, err
	}

	token, err := s.tokens.IssueSession(user.ID)
	if err != nil {
		return model.AuthData{}, err
	}

	return model.AuthData{Token: token, User: user.ToResponse()}, nil
}

// Login verifies the credentials and issues a session token. Unknown email
// and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthData, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return model.AuthData{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthData{}, ErrInvalidCredentials
		}
		return model.AuthData{}, err
	}

	if !crypto.CheckPassword(req.Password, user.PasswordHash) {
		return model.AuthData{}, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueSession(user.ID)
	if err != nil {
		return model.AuthData{}, err
	}

	return model.AuthData{Token: token, User: user.ToResponse()}, nil
}

// ForgotPassword issues a reset token bound to the account that owns the
// email. Delivery happens out of band; outside production the token is
// logged so the flow can be completed locally. The returned message never
// reveals whether the account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, req model.ForgotPasswordRequest) (string, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return forgotPasswordMessage, nil
		}
		return "", err
	}

	token, err := s.tokens.IssueReset(user.ID)
	if err != nil {
		return "", err
	}

	if s.env != "production" {
		slog.Info("password reset token issued", "user_id", user.ID, "token", token)
	}

	return forgotPasswordMessage, nil
}

// ResetPassword verifies a reset token and overwrites the bound user's
// password hash. Token failures surface as crypto.ErrTokenExpired or
// crypto.ErrTokenMalformed; a token for a since-deleted account counts as
// malformed.
func (s *AuthService) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error {
	if utf8.RuneCountInString(req.NewPassword) < 6 {
		return ErrPasswordTooShort
	}

	userID, err := s.tokens.Verify(req.Token, crypto.PurposeReset)
	if err != nil {
		return err
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return crypto.ErrTokenMalformed
		}
		return err
	}

	hash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	return s.users.UpdatePassword(ctx, userID, hash)
}

// normalizeEmail lowercases and validates an email address. The stored form
// is always lowercase, which makes the uniqueness index case-insensitive.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrEmailInvalid
	}
	return email, nil
}
