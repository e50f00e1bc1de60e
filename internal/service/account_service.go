package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/easyshop/internal/apperr"
	"github.com/iliyamo/easyshop/internal/model"
	"github.com/iliyamo/easyshop/internal/queue"
	"github.com/iliyamo/easyshop/internal/repository"
	"github.com/iliyamo/easyshop/internal/utils"
)

// Notifier sends the verification email for a new user.
type Notifier interface {
	SendVerification(ctx context.Context, u *model.User) error
}

// EventPublisher announces completed registrations to other services.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error
}

// RegisterInput is the payload accepted by Register.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountService handles registration, email verification and profile reads.
type AccountService struct {
	Users      UserStore
	Businesses BusinessStore
	Auth       *AuthService
	Notifier   Notifier
	Events     EventPublisher // optional
	BcryptCost int
}

const (
	maxUsernameLen = 20  // users.username
	maxEmailLen    = 200 // users.email
	maxPasswordLen = 72  // bcrypt input limit, in bytes
)

func (in RegisterInput) validate() error {
	username := strings.TrimSpace(in.Username)
	switch {
	case username == "" || in.Password == "" || strings.TrimSpace(in.Email) == "":
		return apperr.ValidationErr("username, email and password are required")
	case utf8.RuneCountInString(username) > maxUsernameLen:
		return apperr.ValidationErr(fmt.Sprintf("username must be at most %d characters", maxUsernameLen))
	case len(in.Password) > maxPasswordLen:
		return apperr.ValidationErr(fmt.Sprintf("password must be at most %d bytes", maxPasswordLen))
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(in.Email))
	if err != nil || addr.Name != "" || utf8.RuneCountInString(addr.Address) > maxEmailLen {
		return apperr.ValidationErr("invalid email address")
	}
	return nil
}

// Register creates the user and its business and sends the verification
// email, all inside one transaction: if the email cannot be sent nothing is
// persisted. The hook runs exactly once per created user.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{Username: in.Username, Email: in.Email, Password: hash}

	b, err := s.Users.CreateWithBusiness(ctx, u, func(ctx context.Context, u *model.User, _ *model.Business) error {
		if err := s.Notifier.SendVerification(ctx, u); err != nil {
			return fmt.Errorf("send verification email: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Wrap(apperr.Validation, "Username or email already registered!", err)
		}
		return nil, err
	}
	logger.Info().Uint64("user_id", u.ID).Uint64("business_id", b.ID).Msg("user registered")

	if s.Events != nil {
		ev := queue.UserRegisteredEvent{
			UserID:       u.ID,
			Username:     u.Username,
			Email:        u.Email,
			BusinessID:   b.ID,
			RegisteredAt: u.JoinDate.UTC().Format(time.RFC3339),
		}
		if err := s.Events.PublishUserRegistered(ctx, ev); err != nil {
			logger.Warn().Err(err).Uint64("user_id", u.ID).Msg("publish user.registered failed")
		}
	}
	return u, nil
}

// Verify marks the user named by token as verified. A token for a user that
// is already verified is rejected as Unauthorized.
func (s *AccountService) Verify(ctx context.Context, token string) (*model.User, error) {
	u, err := s.Auth.ResolveUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if u.IsVerified {
		return nil, apperr.UnauthorizedErr(apperr.MsgInvalidToken)
	}
	if err := s.Users.MarkVerified(ctx, u.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.UnauthorizedErr(apperr.MsgInvalidToken)
		}
		return nil, err
	}
	u.IsVerified = true
	return u, nil
}

// Profile returns the caller's business alongside the user.
func (s *AccountService) Profile(ctx context.Context, u *model.User) (*model.Business, error) {
	b, err := s.Businesses.GetByOwner(ctx, u.ID)
	if err != nil {
		return nil, notFound(err, "Business not found!")
	}
	return b, nil
}
