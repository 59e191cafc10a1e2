package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/mykafka"
	"github.com/Skotchmaster/sweet_shop/internal/repo"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
	pkg_hash "github.com/Skotchmaster/sweet_shop/pkg/hash"
	"github.com/Skotchmaster/sweet_shop/pkg/logging"
	"github.com/Skotchmaster/sweet_shop/pkg/tokens"
)

const DefaultTokenTTL = 30 * time.Minute

type AuthService struct {
	Repo       *repo.GormRepo
	JWTSecret  []byte
	TokenTTL   time.Duration
	AdminEmail string
	Events     EventPublisher
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *models.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	req.Email = normalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := transport.Validate(req); err != nil {
		return nil, detailed(ErrValidation, "%s", transport.Detail(err))
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: pwHash,
		IsAdmin:      s.AdminEmail != "" && normalizeEmail(s.AdminEmail) == req.Email,
		IsActive:     true,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 400, "reason", "user already exist")
			return nil, detailed(ErrConflict, "Email already registered")
		}
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, idKey(user.ID), map[string]any{
		"type":    "user_registered",
		"userID":  user.ID,
		"email":   user.Email,
		"isAdmin": user.IsAdmin,
	})
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	req.Email = normalizeEmail(req.Email)
	l := logging.FromContext(ctx).With("svc", "auth.login", "email", req.Email)

	if err := transport.Validate(req); err != nil {
		return nil, detailed(ErrValidation, "%s", transport.Detail(err))
	}

	user, err := s.Repo.UserByEmail(ctx, req.Email)
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, detailed(ErrInvalidCredentials, "Invalid email or password")
		}
		return nil, err
	}
	if !pkg_hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password")
		return nil, detailed(ErrInvalidCredentials, "Invalid email or password")
	}
	if !user.IsActive {
		l.Warn("login_failed", "status", 401, "reason", "inactive user")
		return nil, detailed(ErrInactiveUser, "User account is inactive")
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	exp := time.Now().Add(ttl)
	token, err := tokens.CreateAccessToken(user.ID, user.Email, user.IsAdmin, exp, s.JWTSecret)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	return &LoginResult{AccessToken: token, ExpiresAt: exp, User: user}, nil
}
