// Package services contains server-side business logic. This file implements
// AuthService, which handles registration, login and access token checks.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/server/auth"
	"github.com/dmitrijs2005/todoapi/internal/server/config"
	"github.com/dmitrijs2005/todoapi/internal/server/models"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/repomanager"
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService provides authentication-related operations:
// - Register: create users with a hashed password
// - Login: verify credentials and mint an access token
// - VerifyToken: resolve a bearer token into an identity
type AuthService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a user. No token is issued.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if blank(in.Name) || blank(in.Email) || blank(in.Password) {
		return nil, fmt.Errorf("%w: name, email and password are required", common.ErrorValidation)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Name: in.Name, Email: in.Email, Password: hash}
	return s.repomanager.Users(s.db).Create(ctx, user)
}

// dummyHash is compared against when the email is unknown, so both failure
// paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	h, _ := auth.HashPassword("todoapi-dummy-password")
	return h
})

// Login checks the credentials and returns a signed access token. Unknown
// email and wrong password both yield common.ErrorInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if blank(email) || blank(password) {
		return "", fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.CheckPassword(dummyHash(), password)
			return "", common.ErrorInvalidCredentials
		}
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if !auth.CheckPassword(user.Password, password) {
		return "", common.ErrorInvalidCredentials
	}

	token, err := auth.GenerateToken(auth.Identity{UserID: user.ID, Email: user.Email}, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return token, nil
}

func (s *AuthService) VerifyToken(token string) (*auth.Identity, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	id := claims.Identity()
	return &id, nil
}

// hashPassword passes validation failures through and reports anything else
// as common.ErrorInternal.
func hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return hash, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
