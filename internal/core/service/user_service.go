package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

const minPasswordLength = 6

type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type ProfileUpdate struct {
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Password  *string `json:"password"`
}

type UserService struct {
	store  port.Storage
	hasher port.PasswordHasher
	log    zerolog.Logger
}

func NewUserService(store port.Storage, hasher port.PasswordHasher, log zerolog.Logger) *UserService {
	return &UserService{store: store, hasher: hasher, log: log}
}

func (s *UserService) Register(ctx context.Context, r Registration) (*domain.User, error) {
	if err := required(field{"username", r.Username}, field{"email", r.Email}); err != nil {
		return nil, err
	}
	if !validEmail(r.Email) {
		return nil, invalid("email %q is not valid", r.Email)
	}
	if len(r.Password) < minPasswordLength {
		return nil, invalid("password must be at least %d characters", minPasswordLength)
	}

	hash, err := s.hasher.Hash(r.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, domain.NewUser{
		Username:  r.Username,
		Email:     r.Email,
		Password:  hash,
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Role:      domain.RoleCustomer,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Authenticate does not reveal whether the username exists.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil || !s.hasher.Verify(password, user.Password) {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

func (s *UserService) Current(ctx context.Context, p domain.Principal) (*domain.User, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, p domain.Principal, in ProfileUpdate) (*domain.User, error) {
	if err := requireUser(p); err != nil {
		return nil, err
	}

	update := domain.UserUpdate{FirstName: in.FirstName, LastName: in.LastName}
	if in.Email != nil {
		if !validEmail(*in.Email) {
			return nil, invalid("email %q is not valid", *in.Email)
		}
		update.Email = in.Email
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return nil, invalid("password must be at least %d characters", minPasswordLength)
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		update.Password = &hash
	}
	if update.Empty() {
		return nil, invalid("no fields to update")
	}

	user, err := s.store.UpdateUser(ctx, p.UserID, update)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", p.UserID, domain.ErrNotFound)
	}
	return user, nil
}

func (s *UserService) SetRole(ctx context.Context, p domain.Principal, userID int64, role domain.Role) (*domain.User, error) {
	if err := requireAdmin(ctx, s.store, p); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, invalid("unknown role %q", role)
	}
	if userID == p.UserID && role != domain.RoleAdmin {
		return nil, invalid("admins cannot demote themselves")
	}

	user, err := s.store.UpdateUser(ctx, userID, domain.UserUpdate{Role: &role})
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}

	s.log.Info().Int64("user_id", userID).Str("role", string(role)).Msg("role changed")
	return user, nil
}

func (s *UserService) List(ctx context.Context, p domain.Principal) ([]domain.User, error) {
	if err := requireAdmin(ctx, s.store, p); err != nil {
		return nil, err
	}
	users, err := s.store.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}
