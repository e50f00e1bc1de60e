package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/easyshop/internal/model"
)

// ProductRepo persists catalog entries.
type ProductRepo struct{ db *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = `id, name, category, original_price, new_price, percentage_discount,
	offer_expiration_date, product_image, date_published, business_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (*model.Product, error) {
	var p model.Product
	err := s.Scan(&p.ID, &p.Name, &p.Category, &p.OriginalPrice, &p.NewPrice, &p.PercentageDiscount,
		&p.OfferExpirationDate, &p.ProductImage, &p.DatePublished, &p.BusinessID)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// List returns every product ordered by id.
func (r *ProductRepo) List(ctx context.Context) ([]*model.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches a product by id.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (*model.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ? LIMIT 1", id))
}

// Create inserts p and populates its ID.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO products
		   (name, category, original_price, new_price, percentage_discount,
		    offer_expiration_date, product_image, date_published, business_id)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		p.Name, p.Category, p.OriginalPrice, p.NewPrice, p.PercentageDiscount,
		p.OfferExpirationDate, p.ProductImage, p.DatePublished, p.BusinessID)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// Update writes the editable product fields. business_id and product_image
// are never changed here.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products
		    SET name = ?, category = ?, original_price = ?, new_price = ?,
		        percentage_discount = ?, offer_expiration_date = ?, date_published = ?
		  WHERE id = ?`,
		p.Name, p.Category, p.OriginalPrice, p.NewPrice,
		p.PercentageDiscount, p.OfferExpirationDate, p.DatePublished, p.ID)
	if err != nil {
		return translate(err)
	}
	return expectOne(res)
}

// Delete removes a product.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// SetImage records the filename of an uploaded product image.
func (r *ProductRepo) SetImage(ctx context.Context, id uint64, filename string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE products SET product_image = ? WHERE id = ?", filename, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}
