package auth

import (
	"context"
	"errors"

	"github.com/AntonTsoy/book-catalog/internal/apperror"
	"github.com/AntonTsoy/book-catalog/internal/users"
	"go.uber.org/zap"
)

const (
	msgUserExists         = "User already exists with the provided email."
	msgInvalidCredentials = "Invalid email or password."
	msgPasswordTooLong    = "password must be at most 72 bytes long."
	msgSignupFailed       = "Unable to create user."
	msgSigninFailed       = "Unable to sign in."
)

type TokenService interface {
	CreateAccessToken(ctx context.Context, userID string) (string, error)
	CreateRefreshToken(ctx context.Context, userID string) (string, error)
	VerifyRefreshToken(ctx context.Context, token string) (string, error)
	DeleteRefreshToken(ctx context.Context, userID string) error
}

type UserService interface {
	CreateUser(ctx context.Context, u *users.User) (*users.User, error)
	GetUserByEmail(ctx context.Context, email string) (*users.User, error)
	IsValidPassword(plain, hashed string) bool
}

type SignupInput struct {
	Name     string
	Surname  string
	Email    string
	Password string
}

type SigninInput struct {
	Email    string
	Password string
}

type UserView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type SigninResult struct {
	UserView
	Tokens Tokens `json:"tokens"`
}

type RefreshResult struct {
	UserID string `json:"userID"`
	Tokens Tokens `json:"tokens"`
}

type Service struct {
	users  UserService
	tokens TokenService
	log    *zap.Logger
}

func NewService(userSvc UserService, tokens TokenService, log *zap.Logger) *Service {
	return &Service{users: userSvc, tokens: tokens, log: log}
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (*UserView, error) {
	u, err := s.users.CreateUser(ctx, &users.User{
		Name:     in.Name,
		Surname:  in.Surname,
		Email:    in.Email,
		Password: in.Password,
		Role:     users.RoleUser,
	})
	if errors.Is(err, users.ErrEmailTaken) {
		return nil, apperror.Conflict(msgUserExists)
	}
	if errors.Is(err, users.ErrPasswordTooLong) {
		return nil, apperror.BadRequest(msgPasswordTooLong)
	}
	if err != nil {
		s.log.Error("signup", zap.String("email", in.Email), zap.Error(err))
		return nil, apperror.Internal(msgSignupFailed, err)
	}

	view := newUserView(u)
	return &view, nil
}

func (s *Service) Signin(ctx context.Context, in SigninInput) (*SigninResult, error) {
	u, err := s.users.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, users.ErrNotFound) {
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		s.log.Error("signin lookup", zap.String("email", in.Email), zap.Error(err))
		return nil, apperror.Internal(msgSigninFailed, err)
	}
	if !s.users.IsValidPassword(in.Password, u.Password) {
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	tokens, err := s.issue(ctx, u.ID.String())
	if err != nil {
		return nil, err
	}
	return &SigninResult{UserView: newUserView(u), Tokens: *tokens}, nil
}

// Refresh rotates the pair. The presented refresh token stops verifying as
// soon as the new one is stored.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	userID, err := s.tokens.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issue(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{UserID: userID, Tokens: *tokens}, nil
}

func (s *Service) Signout(ctx context.Context, refreshToken string) error {
	userID, err := s.tokens.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	return s.tokens.DeleteRefreshToken(ctx, userID)
}

func (s *Service) issue(ctx context.Context, userID string) (*Tokens, error) {
	access, err := s.tokens.CreateAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.CreateRefreshToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func newUserView(u *users.User) UserView {
	return UserView{
		ID:      u.ID.String(),
		Name:    u.Name,
		Surname: u.Surname,
		Email:   u.Email,
	}
}
