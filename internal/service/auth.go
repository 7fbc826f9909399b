package service

import (
	"context"
	"errors"
	"net/mail"

	"github.com/vaultpass/passgen-go/internal/crypto"
	"github.com/vaultpass/passgen-go/internal/model"
	"github.com/vaultpass/passgen-go/internal/repository"
)

const minAccountPasswordLength = 8

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("email is invalid")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrEmailTaken         = errors.New("email already taken")
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// AuthService registers accounts and issues session tokens for the model
// generator.
type AuthService struct {
	users  UserStore
	hasher *crypto.Hasher
	tokens *crypto.TokenIssuer
}

func NewAuthService(users UserStore, hasher *crypto.Hasher, tokens *crypto.TokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Register creates an account and returns a session token.
func (s *AuthService) Register(ctx context.Context, req model.CredentialsRequest) (model.AuthResponse, error) {
	if err := validateCredentials(req); err != nil {
		return model.AuthResponse{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{Email: req.Email, AuthHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}

	return s.session(user)
}

// Login checks credentials and returns a session token.
func (s *AuthService) Login(ctx context.Context, req model.CredentialsRequest) (model.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := s.hasher.Verify(req.Password, user.AuthHash)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.session(user)
}

// GetUser returns the public view of an account.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return model.UserResponse{}, err
	}
	return userResponse(user), nil
}

func (s *AuthService) session(user *model.User) (model.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{Token: token, User: userResponse(user)}, nil
}

func validateCredentials(req model.CredentialsRequest) error {
	switch {
	case req.Email == "":
		return ErrEmailRequired
	case req.Password == "":
		return ErrPasswordRequired
	case len(req.Password) < minAccountPasswordLength:
		return ErrPasswordTooShort
	}
	if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email {
		return ErrEmailInvalid
	}
	return nil
}

func userResponse(u *model.User) model.UserResponse {
	return model.UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}
