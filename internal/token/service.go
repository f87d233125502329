package token

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AntonTsoy/book-catalog/internal/apperror"
	"go.uber.org/zap"
)

// ErrTokenCreation marks failures to mint, persist or delete a token.
var ErrTokenCreation = errors.New("token: creation failed")

const (
	msgSignInAgain         = "Please sign in again."
	msgCreateAccess        = "Unable to create access token."
	msgCreateRefresh       = "Unable to create refresh token."
	msgVerifyRefresh       = "Unable to verify refresh token."
	msgDeleteRefresh       = "Unable to delete refresh token."
	defaultRefreshStoreTTL = 86400 * time.Second
)

// Store holds the single live refresh token per user id.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Del(ctx context.Context, key string) error
}

type Config struct {
	Issuer string

	AccessSecret string
	AccessTTL    time.Duration

	RefreshSecret string
	RefreshTTL    time.Duration
	// StoreTTL is the Redis expiry of the live refresh token. Zero means 86400s.
	StoreTTL time.Duration
}

type Service struct {
	access   *Codec
	refresh  *Codec
	store    Store
	storeTTL time.Duration
	log      *zap.Logger
}

func NewService(cfg Config, store Store, log *zap.Logger) (*Service, error) {
	access, err := NewCodec(cfg.AccessSecret, cfg.Issuer, cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("access token codec: %w", err)
	}
	refresh, err := NewCodec(cfg.RefreshSecret, cfg.Issuer, cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("refresh token codec: %w", err)
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		log.Warn("access and refresh tokens share a secret")
	}

	storeTTL := cfg.StoreTTL
	if storeTTL <= 0 {
		storeTTL = defaultRefreshStoreTTL
	}

	return &Service{
		access:   access,
		refresh:  refresh,
		store:    store,
		storeTTL: storeTTL,
		log:      log,
	}, nil
}

func (s *Service) CreateAccessToken(_ context.Context, userID string) (string, error) {
	tok, err := s.access.Sign(userID)
	if err != nil {
		s.log.Error("sign access token", zap.String("user_id", userID), zap.Error(err))
		return "", apperror.Internal(msgCreateAccess, fmt.Errorf("%w: %v", ErrTokenCreation, err))
	}
	return tok, nil
}

// CreateRefreshToken mints a refresh token and makes it the user's only live
// one; whatever was stored before is revoked by the overwrite.
func (s *Service) CreateRefreshToken(ctx context.Context, userID string) (string, error) {
	tok, err := s.refresh.Sign(userID)
	if err != nil {
		s.log.Error("sign refresh token", zap.String("user_id", userID), zap.Error(err))
		return "", apperror.Internal(msgCreateRefresh, fmt.Errorf("%w: %v", ErrTokenCreation, err))
	}

	if err := s.store.Set(ctx, userID, tok, s.storeTTL); err != nil {
		s.log.Error("store refresh token", zap.String("user_id", userID), zap.Error(err))
		return "", apperror.Internal(msgCreateRefresh, fmt.Errorf("%w: %w", ErrTokenCreation, err))
	}

	return tok, nil
}

// VerifyAccessToken never touches the store.
func (s *Service) VerifyAccessToken(_ context.Context, tokenString string) (*Claims, error) {
	claims, err := s.access.Verify(tokenString)
	if err != nil {
		s.log.Debug("access token rejected", zap.Error(err))
		return nil, apperror.New(http.StatusUnauthorized, msgSignInAgain, err)
	}
	return claims, nil
}

// VerifyRefreshToken returns the user id of a refresh token that verifies
// and is byte-for-byte the one currently stored for that user.
func (s *Service) VerifyRefreshToken(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.refresh.Verify(tokenString)
	if err != nil {
		s.log.Debug("refresh token rejected", zap.Error(err))
		return "", apperror.New(http.StatusUnauthorized, msgSignInAgain, err)
	}
	userID := claims.UserID()

	stored, found, err := s.store.Get(ctx, userID)
	if err != nil {
		s.log.Error("load refresh token", zap.String("user_id", userID), zap.Error(err))
		return "", apperror.Internal(msgVerifyRefresh, err)
	}
	if !found {
		return "", apperror.Unauthorized(msgSignInAgain)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(tokenString)) != 1 {
		s.log.Warn("refresh token is not the live one",
			zap.String("user_id", userID),
			zap.String("jti", claims.ID),
		)
		return "", apperror.Unauthorized(msgSignInAgain)
	}

	return userID, nil
}

func (s *Service) DeleteRefreshToken(ctx context.Context, userID string) error {
	if err := s.store.Del(ctx, userID); err != nil {
		s.log.Error("delete refresh token", zap.String("user_id", userID), zap.Error(err))
		return apperror.Internal(msgDeleteRefresh, fmt.Errorf("%w: %w", ErrTokenCreation, err))
	}
	return nil
}
