// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and issuing JWTs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avoronovs/papertrail/internal/common"
	"github.com/avoronovs/papertrail/internal/server/auth"
	"github.com/avoronovs/papertrail/internal/server/config"
	"github.com/avoronovs/papertrail/internal/server/models"
	"github.com/avoronovs/papertrail/internal/server/repositories/repomanager"
)

// UserService provides authentication-related operations:
// - Register: create accounts
// - Login: verify credentials and mint access tokens
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a new account and returns an access token for it.
// A taken email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("error creating user: %v", err)
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	return user, token, nil
}

// Login verifies the credentials and, on success, returns an access token.
// An unknown email and a wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", common.ErrorInternal
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	return user, token, nil
}
