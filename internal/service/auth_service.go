package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/easyshop/internal/apperr"
	"github.com/iliyamo/easyshop/internal/model"
	"github.com/iliyamo/easyshop/internal/repository"
	"github.com/iliyamo/easyshop/internal/utils"
)

// AuthService authenticates credentials, issues bearer tokens and resolves
// tokens back to users.
type AuthService struct {
	Users     UserStore
	Secret    string
	AccessTTL time.Duration
}

func NewAuthService(users UserStore, secret string, accessTTL time.Duration) *AuthService {
	return &AuthService{Users: users, Secret: secret, AccessTTL: accessTTL}
}

// Authenticate returns the user only when username exists and password
// matches its stored hash.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.UnauthorizedErr(apperr.MsgBadCredential)
		}
		return nil, err
	}
	if !utils.VerifyPassword(u.Password, password) {
		return nil, apperr.UnauthorizedErr(apperr.MsgBadCredential)
	}
	return u, nil
}

// IssueToken authenticates the pair and returns a signed access token
// carrying the user's id and username.
func (s *AuthService) IssueToken(ctx context.Context, username, password string) (string, error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	return utils.EncodeToken(s.Secret, u.ID, u.Username, s.AccessTTL)
}

// ResolveUser decodes token and loads the user it names. Every failure,
// including a user that no longer exists, is Unauthorized.
func (s *AuthService) ResolveUser(ctx context.Context, token string) (*model.User, error) {
	claims, err := utils.DecodeToken(s.Secret, token)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unauthorized, apperr.MsgInvalidToken, err)
	}
	u, err := s.Users.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Wrap(apperr.Unauthorized, apperr.MsgInvalidToken, err)
		}
		return nil, err
	}
	return u, nil
}
