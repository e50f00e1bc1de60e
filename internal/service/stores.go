// Package service holds the business rules of the API: authentication,
// registration and the ownership-checked catalog operations. Handlers stay
// thin and call into these services.
package service

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"

	"github.com/iliyamo/easyshop/internal/apperr"
	"github.com/iliyamo/easyshop/internal/model"
	"github.com/iliyamo/easyshop/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "service").Logger()

// UserStore is satisfied by repository.UserRepo.
type UserStore interface {
	CreateWithBusiness(ctx context.Context, u *model.User, hook repository.CreatedHook) (*model.Business, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	MarkVerified(ctx context.Context, id uint64) error
}

// BusinessStore is satisfied by repository.BusinessRepo.
type BusinessStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Business, error)
	GetByOwner(ctx context.Context, ownerID uint64) (*model.Business, error)
	Update(ctx context.Context, b *model.Business) error
	SetLogo(ctx context.Context, id uint64, filename string) error
}

// ProductStore is satisfied by repository.ProductRepo.
type ProductStore interface {
	List(ctx context.Context) ([]*model.Product, error)
	GetByID(ctx context.Context, id uint64) (*model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id uint64) error
	SetImage(ctx context.Context, id uint64, filename string) error
}

// notFound converts repository.ErrNotFound into an apperr NotFound with the
// given message and leaves other errors untouched.
func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Wrap(apperr.NotFound, msg, err)
	}
	return err
}
