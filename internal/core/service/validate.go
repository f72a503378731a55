package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rl1809/storefront/internal/core/domain"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

type field struct {
	name, value string
}

func required(fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return invalid("%s is required", f.name)
		}
	}
	return nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == strings.TrimSpace(email)
}

func requireUser(p domain.Principal) error {
	if !p.Authenticated() {
		return domain.ErrUnauthenticated
	}
	return nil
}

type userGetter interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

// requireAdmin trusts the stored role over the token claim, so a demoted
// admin loses access before their token expires.
func requireAdmin(ctx context.Context, users userGetter, p domain.Principal) error {
	if !p.Authenticated() {
		return domain.ErrUnauthenticated
	}
	if !p.IsAdmin() {
		return domain.ErrForbidden
	}
	user, err := users.GetUser(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("load principal: %w", err)
	}
	if user == nil {
		return domain.ErrUnauthenticated
	}
	if user.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}
