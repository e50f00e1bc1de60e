package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/easyshop/internal/model"
)

// BusinessRepo persists seller profiles. Businesses are only ever created by
// UserRepo.CreateWithBusiness; this repo reads and edits them.
type BusinessRepo struct{ db *sql.DB }

func NewBusinessRepo(db *sql.DB) *BusinessRepo { return &BusinessRepo{db: db} }

const businessColumns = "id, business_name, business_description, logo, city, region, owner_id"

// GetByID fetches a business by id.
func (r *BusinessRepo) GetByID(ctx context.Context, id uint64) (*model.Business, error) {
	return scanBusiness(r.db.QueryRowContext(ctx,
		"SELECT "+businessColumns+" FROM businesses WHERE id=? LIMIT 1", id))
}

// GetByOwner fetches the business owned by the given user.
func (r *BusinessRepo) GetByOwner(ctx context.Context, ownerID uint64) (*model.Business, error) {
	return scanBusiness(r.db.QueryRowContext(ctx,
		"SELECT "+businessColumns+" FROM businesses WHERE owner_id=? LIMIT 1", ownerID))
}

// Update writes the editable profile fields. owner_id and logo are left alone.
func (r *BusinessRepo) Update(ctx context.Context, b *model.Business) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE businesses
		    SET business_name = ?, business_description = ?, city = ?, region = ?
		  WHERE id = ?`,
		b.Name, nullString(b.Description), b.City, b.Region, b.ID)
	if err != nil {
		return translate(err)
	}
	return expectOne(res)
}

// SetLogo records the filename of an uploaded logo.
func (r *BusinessRepo) SetLogo(ctx context.Context, id uint64, filename string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE businesses SET logo = ? WHERE id = ?", filename, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func scanBusiness(row *sql.Row) (*model.Business, error) {
	var (
		b    model.Business
		desc sql.NullString
	)
	if err := row.Scan(&b.ID, &b.Name, &desc, &b.Logo, &b.City, &b.Region, &b.OwnerID); err != nil {
		return nil, translate(err)
	}
	b.Description = desc.String
	return &b, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
