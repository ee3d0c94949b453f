package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Skotchmaster/partify/internal/hash"
	"github.com/Skotchmaster/partify/internal/models"
	"github.com/Skotchmaster/partify/internal/repo"
	"github.com/Skotchmaster/partify/internal/tokens"
	"github.com/Skotchmaster/partify/internal/transport"
)

const minPasswordLen = 6

type UserRepo interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int64, error)
}

type UserService struct {
	Repo      UserRepo
	JWTSecret []byte
	TokenTTL  time.Duration
	Events    EventPublisher

	Now func() time.Time
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)

	switch {
	case name == "":
		return nil, validationf("name is required")
	case email == "" || !strings.Contains(email, "@"):
		return nil, validationf("a valid email is required")
	case len(req.Password) < minPasswordLen:
		return nil, validationf("password must be at least %d characters", minPasswordLen)
	}

	if _, err := s.Repo.GetUserByEmail(ctx, email); err == nil {
		return nil, validationf("User already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Name: name, Email: email, PasswordHash: pwHash}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, validationf("User already exists")
		}
		return nil, err
	}

	publish(ctx, s.Events, TopicUserEvents, user.ID, map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
	})
	return s.authResponse(user)
}

func (s *UserService) Login(ctx context.Context, req transport.LoginRequest) (*transport.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, validationf("email and password are required")
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, &Error{Kind: ErrUnauthenticated, Msg: "Invalid email or password"}
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return nil, &Error{Kind: ErrUnauthenticated, Msg: "Invalid email or password"}
	}
	return s.authResponse(user)
}

func (s *UserService) authResponse(user *models.User) (*transport.AuthResponse, error) {
	token, err := tokens.CreateAccessToken(s.JWTSecret, user.ID, tokens.RoleFor(user.IsAdmin), s.now(), s.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &transport.AuthResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		Token:   token,
	}, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *UserService) ToggleAdmin(ctx context.Context, id string) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsAdmin = !user.IsAdmin
	if err := s.Repo.SetAdmin(ctx, id, user.IsAdmin); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id, requesterID string) error {
	if id == requesterID {
		return validationf("Cannot delete your own account")
	}
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("User not found")
		}
		return err
	}
	publish(ctx, s.Events, TopicUserEvents, id, map[string]any{
		"type":   "user_deleted",
		"userID": id,
	})
	return nil
}
