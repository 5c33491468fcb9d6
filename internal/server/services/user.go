// Package services contains server-side business logic: identities and
// tokens (UserService), posts with ownership rules (PostService) and chat
// messages with live fan-out (MessageService).
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf16"

	"github.com/dmitrijs2005/gophboard/internal/common"
	"github.com/dmitrijs2005/gophboard/internal/server/auth"
	"github.com/dmitrijs2005/gophboard/internal/server/config"
	"github.com/dmitrijs2005/gophboard/internal/server/models"
	"github.com/dmitrijs2005/gophboard/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6

	msgInvalidCredentials = "Invalid username or password"
	msgUsernameTaken      = "Username already taken"
)

// AuthPayload is returned by Register and Login. User is the public
// projection.
type AuthPayload struct {
	Token string
	User  *models.User
}

// UserService provides identity operations:
// - Register / Login: create or check credentials and mint tokens
// - ResolveCaller / ResolveToken: map a bearer credential to a live user
// - Get / List: public reads
type UserService struct {
	options
	db                    *sqlx.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	hashCost              int

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sqlx.DB, m repomanager.RepositoryManager, cfg *config.Config, opts ...Option) *UserService {
	return &UserService{
		options:               buildOptions("users", opts),
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		hashCost:              cfg.PasswordHashCost,
	}
}

// Register creates a new identity and returns a token for it.
func (s *UserService) Register(ctx context.Context, username, password string) (*AuthPayload, error) {
	if textLength(username) < MinUsernameLength {
		return nil, common.Validation(fmt.Sprintf("Username must be at least %d characters", MinUsernameLength))
	}
	if textLength(password) < MinPasswordLength {
		return nil, common.Validation(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, common.Conflict(msgUsernameTaken)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, s.publicError(ctx, "register", err)
	}

	hash, err := auth.HashPassword(password, s.hashCost)
	if err != nil {
		return nil, s.publicError(ctx, "hash password", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, s.publicError(ctx, "generate id", err)
	}

	user := &models.User{ID: id.String(), UserName: username, PasswordHash: hash, CreatedAt: s.now()}
	if _, err := repo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same name.
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.Conflict(msgUsernameTaken)
		}
		return nil, s.publicError(ctx, "create user", err)
	}

	created, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, s.publicError(ctx, "reload user", err)
	}

	s.log.Info(ctx, "user registered", "user_id", created.ID)
	return s.issue(ctx, created)
}

// Login verifies credentials. Unknown user and wrong password are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (*AuthPayload, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, s.publicError(ctx, "login", err)
		}
		// Spend the same bcrypt time as a real comparison.
		auth.ComparePassword(s.getDummyHash(), password)
		s.metrics.AuthFailure("login")
		return nil, common.Authentication(msgInvalidCredentials)
	}

	if !auth.ComparePassword(user.PasswordHash, password) {
		s.metrics.AuthFailure("login")
		return nil, common.Authentication(msgInvalidCredentials)
	}

	return s.issue(ctx, user)
}

// ResolveCaller maps an Authorization header value to the live user, or nil.
func (s *UserService) ResolveCaller(ctx context.Context, header string) *models.User {
	token, ok := auth.ExtractBearerToken(header)
	if !ok {
		return nil
	}
	return s.ResolveToken(ctx, token)
}

// ResolveToken maps a raw token to the live user, or nil. A valid token for
// a user that no longer exists also yields nil.
func (s *UserService) ResolveToken(ctx context.Context, token string) *models.User {
	if token == "" {
		return nil
	}

	claims, ok := auth.VerifyToken(token, s.jwtSecret)
	if !ok {
		s.metrics.AuthFailure("token")
		return nil
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "caller lookup failed", "user_id", claims.UserID, "error", err)
		}
		return nil
	}

	return user.Public()
}

// Get returns the public user or nil when it does not exist.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, s.publicError(ctx, "get user", err)
	}
	return user.Public(), nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, s.publicError(ctx, "list users", err)
	}
	for i, u := range users {
		users[i] = u.Public()
	}
	return users, nil
}

// --- helpers below ---

func (s *UserService) issue(ctx context.Context, user *models.User) (*AuthPayload, error) {
	token, err := auth.GenerateToken(user.ID, user.UserName, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, s.publicError(ctx, "generate token", err)
	}
	return &AuthPayload{Token: token, User: user.Public()}, nil
}

func (s *UserService) getDummyHash() string {
	s.dummyOnce.Do(func() {
		// An error leaves the hash empty; the comparison then fails fast,
		// which is still a rejection.
		s.dummyHash, _ = auth.HashPassword("dummy-password", s.hashCost)
	})
	return s.dummyHash
}

// textLength counts UTF-16 code units, so characters outside the BMP
// (most emoji) count twice, as they do for browser clients.
func textLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}
