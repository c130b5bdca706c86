package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bilancio/internal/core"
)

const sessionTTL = 7 * 24 * time.Hour

type AuthService struct {
	users       UserStore
	invitations *InvitationService
	log         *slog.Logger
	now         func() time.Time
}

func NewAuthService(users UserStore, invitations *InvitationService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:       users,
		invitations: invitations,
		log:         logger.With(slog.String("component", "auth_service")),
		now:         time.Now,
	}
}

// Register admits a new user through an invitation code. The code slot is
// claimed before the user row is written; an exhausted or invalid code stops
// registration cold.
func (s *AuthService) Register(ctx context.Context, username, email, password, inviteCode string) (*core.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || len(password) < 8 {
		return nil, core.ErrBadCredentials
	}

	taken, err := s.users.UsernameExists(ctx, username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, core.ErrUsernameTaken
	}
	taken, err = s.users.EmailExists(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, core.ErrEmailTaken
	}

	if _, err := s.invitations.Consume(ctx, inviteCode); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &core.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Active:       true,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user registered", slog.Int64("user_id", u.ID))
	return u, nil
}

// Login verifies the credentials and opens a session, returning its token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *core.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", nil, core.ErrBadCredentials
		}
		return "", nil, err
	}
	if !u.Active {
		return "", nil, core.ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, core.ErrBadCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return "", nil, err
	}
	if err := s.users.CreateSession(ctx, token, u.ID, s.now().Add(sessionTTL)); err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}
	s.log.Info("user logged in", slog.Int64("user_id", u.ID))
	return token, u, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.users.DeleteSession(ctx, token)
}

// Authenticate resolves a session token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*core.User, error) {
	userID, err := s.users.GetSession(ctx, token, s.now())
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (s *AuthService) Profile(ctx context.Context, userID int64) (*core.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// ProfilePatch carries the updatable profile fields; nil means untouched.
type ProfilePatch struct {
	Username *string
	Email    *string
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, patch ProfilePatch) (*core.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		taken, err := s.users.UsernameExists(ctx, username, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, core.ErrUsernameTaken
		}
		u.Username = username
	}
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		taken, err := s.users.EmailExists(ctx, email, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, core.ErrEmailTaken
		}
		u.Email = email
	}
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// PruneSessions deletes expired sessions; the worker calls this on a timer.
func (s *AuthService) PruneSessions(ctx context.Context) (int64, error) {
	return s.users.DeleteExpiredSessions(ctx, s.now())
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
