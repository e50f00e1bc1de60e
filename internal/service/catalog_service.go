package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/easyshop/internal/apperr"
	"github.com/iliyamo/easyshop/internal/media"
	"github.com/iliyamo/easyshop/internal/model"
)

// ImageStore persists uploaded images and returns the stored filename.
type ImageStore interface {
	Save(filename string, src io.Reader) (string, error)
}

// ProductInput is the writable part of a product.
type ProductInput struct {
	Name                string          `json:"name"`
	Category            string          `json:"category"`
	OriginalPrice       decimal.Decimal `json:"original_price"`
	NewPrice            decimal.Decimal `json:"new_price"`
	OfferExpirationDate model.Date      `json:"offer_expiration_date"`
}

// BusinessInput is the writable part of a business profile.
type BusinessInput struct {
	Name        string `json:"business_name"`
	Description string `json:"business_description"`
	City        string `json:"city"`
	Region      string `json:"region"`
}

// ProductDetail is a product together with its seller.
type ProductDetail struct {
	Product  *model.Product
	Business *model.Business
	Owner    *model.User
}

// CatalogService implements product and business operations. Every mutation
// checks that the caller owns the business involved.
type CatalogService struct {
	Users      UserStore
	Businesses BusinessStore
	Products   ProductStore
	Images     ImageStore
	now        func() time.Time
}

func NewCatalogService(users UserStore, businesses BusinessStore, products ProductStore, images ImageStore) *CatalogService {
	return &CatalogService{Users: users, Businesses: businesses, Products: products, Images: images, now: time.Now}
}

func (s *CatalogService) clock() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

var errNotOwner = apperr.UnauthorizedErr(apperr.MsgNotPermitted)

// Column bounds of the products and businesses tables.
const (
	maxProductName  = 100
	maxCategory     = 30
	maxBusinessName = 20
	maxLocation     = 100
	maxDescription  = 65535 // bytes, TEXT
)

var (
	maxPrice    = decimal.RequireFromString("9999999999.99") // DECIMAL(12,2)
	maxDiscount = decimal.RequireFromString("99999999.99")   // DECIMAL(10,2)
)

func tooLong(s string, n int) bool { return utf8.RuneCountInString(s) > n }

// apply copies in onto p and recomputes the discount. Prices are rounded to
// cents first so the stored prices and discount agree.
func (in ProductInput) apply(p *model.Product) error {
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	if name == "" || tooLong(name, maxProductName) || tooLong(category, maxCategory) {
		return apperr.ValidationErr(apperr.MsgInvalidData)
	}
	original := in.OriginalPrice.Round(2)
	next := in.NewPrice.Round(2)
	if original.Abs().GreaterThan(maxPrice) || next.Abs().GreaterThan(maxPrice) {
		return apperr.ValidationErr(apperr.MsgInvalidData)
	}
	p.Name = name
	p.Category = category
	p.OriginalPrice = original
	p.NewPrice = next
	p.OfferExpirationDate = in.OfferExpirationDate
	if err := p.ApplyDiscount(); err != nil {
		return apperr.Wrap(apperr.Validation, apperr.MsgInvalidData, err)
	}
	if p.PercentageDiscount.Abs().GreaterThan(maxDiscount) {
		return apperr.ValidationErr(apperr.MsgInvalidData)
	}
	return nil
}

// ListProducts returns the whole catalog.
func (s *CatalogService) ListProducts(ctx context.Context) ([]*model.Product, error) {
	return s.Products.List(ctx)
}

// CreateProduct adds a product to the caller's business.
func (s *CatalogService) CreateProduct(ctx context.Context, caller *model.User, in ProductInput) (*model.Product, error) {
	b, err := s.Businesses.GetByOwner(ctx, caller.ID)
	if err != nil {
		return nil, notFound(err, "Business not found!")
	}
	now := s.clock().Truncate(time.Second)
	p := &model.Product{BusinessID: b.ID, DatePublished: now}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if p.OfferExpirationDate.IsZero() {
		p.OfferExpirationDate = model.NewDate(now)
	}
	if err := s.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProduct returns a product with its business and the business owner.
func (s *CatalogService) GetProduct(ctx context.Context, id uint64) (*ProductDetail, error) {
	p, err := s.Products.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Product not found!")
	}
	b, err := s.Businesses.GetByID(ctx, p.BusinessID)
	if err != nil {
		return nil, notFound(err, "Business not found!")
	}
	owner, err := s.Users.GetByID(ctx, b.OwnerID)
	if err != nil {
		return nil, notFound(err, "Owner not found!")
	}
	return &ProductDetail{Product: p, Business: b, Owner: owner}, nil
}

// ownedProduct loads product id and fails with Unauthorized unless caller
// owns its business.
func (s *CatalogService) ownedProduct(ctx context.Context, caller *model.User, id uint64) (*model.Product, error) {
	p, err := s.Products.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Product not found!")
	}
	b, err := s.Businesses.GetByID(ctx, p.BusinessID)
	if err != nil {
		return nil, notFound(err, "Business not found!")
	}
	if b.OwnerID != caller.ID {
		return nil, errNotOwner
	}
	return p, nil
}

// UpdateProduct replaces the writable fields of a product owned by caller,
// recomputes its discount and stamps a new publication date.
func (s *CatalogService) UpdateProduct(ctx context.Context, caller *model.User, id uint64, in ProductInput) (*model.Product, error) {
	p, err := s.ownedProduct(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	next := *p
	if err := in.apply(&next); err != nil {
		return nil, err
	}
	if next.OfferExpirationDate.IsZero() {
		next.OfferExpirationDate = p.OfferExpirationDate
	}
	next.DatePublished = s.clock().Truncate(time.Second)
	if err := s.Products.Update(ctx, &next); err != nil {
		return nil, notFound(err, "Product not found!")
	}
	return &next, nil
}

// DeleteProduct removes a product owned by caller.
func (s *CatalogService) DeleteProduct(ctx context.Context, caller *model.User, id uint64) error {
	if _, err := s.ownedProduct(ctx, caller, id); err != nil {
		return err
	}
	return notFound(s.Products.Delete(ctx, id), "Product not found!")
}

// UpdateBusiness edits a business owned by caller. Empty city or region fall
// back to the default location; the owner never changes.
func (s *CatalogService) UpdateBusiness(ctx context.Context, caller *model.User, id uint64, in BusinessInput) (*model.Business, error) {
	b, err := s.Businesses.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Business not found!")
	}
	if b.OwnerID != caller.ID {
		return nil, errNotOwner
	}
	name := strings.TrimSpace(in.Name)
	desc := strings.TrimSpace(in.Description)
	city, region := orDefault(in.City), orDefault(in.Region)
	if name == "" || tooLong(name, maxBusinessName) || len(desc) > maxDescription ||
		tooLong(city, maxLocation) || tooLong(region, maxLocation) {
		return nil, apperr.ValidationErr(apperr.MsgInvalidData)
	}
	b.Name = name
	b.Description = desc
	b.City = city
	b.Region = region
	if err := s.Businesses.Update(ctx, b); err != nil {
		return nil, notFound(err, "Business not found!")
	}
	return b, nil
}

func orDefault(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return model.DefaultLocation
	}
	return s
}

// SetBusinessLogo stores an uploaded logo for the caller's business.
func (s *CatalogService) SetBusinessLogo(ctx context.Context, caller *model.User, filename string, src io.Reader) (string, error) {
	b, err := s.Businesses.GetByOwner(ctx, caller.ID)
	if err != nil {
		return "", notFound(err, "Business not found!")
	}
	if b.OwnerID != caller.ID {
		return "", errNotOwner
	}
	name, err := s.saveImage(filename, src)
	if err != nil {
		return "", err
	}
	if err := s.Businesses.SetLogo(ctx, b.ID, name); err != nil {
		return "", notFound(err, "Business not found!")
	}
	return name, nil
}

// SetProductImage stores an uploaded image for a product owned by caller.
func (s *CatalogService) SetProductImage(ctx context.Context, caller *model.User, id uint64, filename string, src io.Reader) (string, error) {
	p, err := s.ownedProduct(ctx, caller, id)
	if err != nil {
		return "", err
	}
	name, err := s.saveImage(filename, src)
	if err != nil {
		return "", err
	}
	if err := s.Products.SetImage(ctx, p.ID, name); err != nil {
		return "", notFound(err, "Product not found!")
	}
	return name, nil
}

func (s *CatalogService) saveImage(filename string, src io.Reader) (string, error) {
	name, err := s.Images.Save(filename, src)
	switch {
	case errors.Is(err, media.ErrExtension):
		return "", apperr.Wrap(apperr.Validation, apperr.MsgInvalidExt, err)
	case errors.Is(err, media.ErrImage):
		return "", apperr.Wrap(apperr.Validation, apperr.MsgInvalidImage, err)
	}
	return name, err
}
