package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/easyshop/internal/model"
)

// CreatedHook runs inside the registration transaction after both the user
// and its business rows exist. Returning an error rolls the whole
// registration back.
type CreatedHook func(ctx context.Context, u *model.User, b *model.Business) error

// UserRepo persists users.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = "id, username, email, password, is_verified, join_date"

// CreateWithBusiness inserts u together with its default business in one
// transaction and calls hook before committing. On success u.ID and
// u.JoinDate are populated and the new business is returned.
func (r *UserRepo) CreateWithBusiness(ctx context.Context, u *model.User, hook CreatedHook) (b *model.Business, err error) {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.JoinDate.IsZero() {
		u.JoinDate = time.Now().UTC().Truncate(time.Second)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (username, email, password, is_verified, join_date) VALUES (?,?,?,?,?)",
		u.Username, u.Email, u.Password, u.IsVerified, u.JoinDate)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	u.ID = uint64(id)

	b = model.NewBusinessFor(u)
	res, err = tx.ExecContext(ctx,
		"INSERT INTO businesses (business_name, city, region, owner_id) VALUES (?,?,?,?)",
		b.Name, b.City, b.Region, b.OwnerID)
	if err != nil {
		return nil, translate(err)
	}
	bid, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	b.ID = uint64(bid)

	if hook != nil {
		if err = hook(ctx, u, b); err != nil {
			return nil, err
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", strings.TrimSpace(username)))
}

// MarkVerified flips is_verified for a user that is not verified yet. It
// returns ErrNotFound when the user is missing or already verified, so two
// concurrent verifications cannot both succeed.
func (r *UserRepo) MarkVerified(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET is_verified=TRUE WHERE id=? AND is_verified=FALSE", id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *UserRepo) scanOne(row *sql.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.IsVerified, &u.JoinDate); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
