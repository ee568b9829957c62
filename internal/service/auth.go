package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Skotchmaster/scope_auth/internal/domain"
	"github.com/Skotchmaster/scope_auth/internal/events"
	"github.com/Skotchmaster/scope_auth/internal/hash"
	"github.com/Skotchmaster/scope_auth/internal/logging"
	"github.com/Skotchmaster/scope_auth/internal/models"
	"github.com/Skotchmaster/scope_auth/internal/tokens"
)

const TokenTypeBearer = "bearer"

type AuthService struct {
	Users      UserStore
	Hasher     *hash.Hasher
	Tokens     *tokens.Codec
	Events     events.Publisher
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	TokenType    string
}

func (s *AuthService) Register(ctx context.Context, in models.NewUser) (*models.PublicUser, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", in.Username)

	var missing []string
	if strings.TrimSpace(in.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(in.Email) == "" {
		missing = append(missing, "email")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		l.Warn("register_failed", "status", 422, "reason", "missing fields", "fields", missing)
		return nil, domain.Validation("Field required: %s", strings.Join(missing, ", "))
	}

	hashed, err := s.Hasher.HashPassword(in.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Username:       in.Username,
		Email:          in.Email,
		FullName:       in.FullName,
		HashedPassword: hashed,
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			l.Warn("register_failed", "status", 403, "reason", "user already exists")
			return nil, err
		}
		l.Error("register_failed", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, l, s.Events, events.TopicUsers, events.Event{
		Type: events.UserRegistered, UserID: user.ID, Username: user.Username,
	})
	l.Info("register_successful", "user_id", user.ID)

	pub := user.Public()
	return &pub, nil
}

// Authenticate reports whether username and password match a stored user.
// Only storage failures produce an error.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, bool, error) {
	user, err := s.Users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrMissing) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !s.Hasher.CheckPassword(user.HashedPassword, password) {
		return nil, false, nil
	}
	return user, true, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	user, ok, err := s.Authenticate(ctx, username, password)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if !ok {
		l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
		return nil, domain.Unauthorized(nil, "Incorrect username or password")
	}

	now := time.Now().UTC()
	access, err := s.Tokens.EncodeUser(user.ID, s.AccessTTL)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign access token", "error", err)
		return nil, err
	}
	refresh, err := s.Tokens.EncodeUser(user.ID, s.RefreshTTL)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign refresh token", "error", err)
		return nil, err
	}

	publish(ctx, l, s.Events, events.TopicUsers, events.Event{
		Type: events.UserLoggedIn, UserID: user.ID, Username: user.Username,
	})
	l.Info("login_successful", "user_id", user.ID)

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    now.Add(s.AccessTTL),
		RefreshExp:   now.Add(s.RefreshTTL),
		TokenType:    TokenTypeBearer,
	}, nil
}

// Refresh issues a new access token for principal. The refresh token must
// belong to the same user as the access token that produced principal.
func (s *AuthService) Refresh(ctx context.Context, principal *models.User, refreshToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if principal == nil {
		l.Warn("refresh_failed", "status", 401, "reason", "no principal")
		return nil, domain.Unauthorized(nil, "Could not validate credentials")
	}
	l = l.With("user_id", principal.ID)

	if refreshToken == "" {
		l.Warn("refresh_failed", "status", 401, "reason", "missing refresh token")
		return nil, domain.Unauthorized(nil, "Could not validate credentials")
	}

	sub, err := s.Tokens.Decode(refreshToken)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "invalid refresh token", "error", err)
		return nil, err
	}
	if sub != principal.ID {
		l.Warn("refresh_failed", "status", 401, "reason", "refresh token subject mismatch", "refresh_sub", sub)
		return nil, domain.Unauthorized(nil, "Could not validate credentials")
	}

	access, err := s.Tokens.EncodeUser(principal.ID, s.AccessTTL)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot sign access token", "error", err)
		return nil, err
	}

	publish(ctx, l, s.Events, events.TopicUsers, events.Event{
		Type: events.TokenRefreshed, UserID: principal.ID, Username: principal.Username,
	})
	l.Info("refresh_successful")

	return &TokenPair{
		AccessToken: access,
		AccessExp:   time.Now().UTC().Add(s.AccessTTL),
		TokenType:   TokenTypeBearer,
	}, nil
}
