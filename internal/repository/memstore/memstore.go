// Package memstore provides in-memory implementations of the user, business
// and product repositories. They honour the same contracts as the MySQL
// repositories (sentinel errors, uniqueness, transactional registration) and
// back the service and handler tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/easyshop/internal/model"
	"github.com/iliyamo/easyshop/internal/repository"
)

// Store holds all three tables behind one mutex.
type Store struct {
	mu         sync.Mutex
	users      map[uint64]model.User
	businesses map[uint64]model.Business
	products   map[uint64]model.Product
	nextID     uint64
}

func New() *Store {
	return &Store{
		users:      map[uint64]model.User{},
		businesses: map[uint64]model.Business{},
		products:   map[uint64]model.Product{},
	}
}

func (s *Store) id() uint64 {
	s.nextID++
	return s.nextID
}

// Users returns the user repository view of the store.
func (s *Store) Users() *Users { return &Users{s} }

// Businesses returns the business repository view of the store.
func (s *Store) Businesses() *Businesses { return &Businesses{s} }

// Products returns the product repository view of the store.
func (s *Store) Products() *Products { return &Products{s} }

type Users struct{ s *Store }

func (r *Users) CreateWithBusiness(ctx context.Context, u *model.User, hook repository.CreatedHook) (*model.Business, error) {
	s := r.s
	s.mu.Lock()
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			s.mu.Unlock()
			return nil, repository.ErrDuplicate
		}
	}
	if u.JoinDate.IsZero() {
		u.JoinDate = time.Now().UTC().Truncate(time.Second)
	}
	u.ID = s.id()
	b := model.NewBusinessFor(u)
	b.ID = s.id()
	s.users[u.ID] = *u
	s.businesses[b.ID] = *b
	s.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, u, b); err != nil {
			s.mu.Lock()
			delete(s.users, u.ID)
			delete(s.businesses, b.ID)
			s.mu.Unlock()
			return nil, err
		}
	}
	return b, nil
}

func (r *Users) GetByID(_ context.Context, id uint64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *Users) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	username = strings.TrimSpace(username)
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) MarkVerified(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.IsVerified {
		return repository.ErrNotFound
	}
	u.IsVerified = true
	r.s.users[id] = u
	return nil
}

// Count returns the number of stored users.
func (r *Users) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.users)
}

type Businesses struct{ s *Store }

func (r *Businesses) GetByID(_ context.Context, id uint64) (*model.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.businesses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r *Businesses) GetByOwner(_ context.Context, ownerID uint64) (*model.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.businesses {
		if b.OwnerID == ownerID {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Businesses) Update(_ context.Context, b *model.Business) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.businesses[b.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Name, cur.Description, cur.City, cur.Region = b.Name, b.Description, b.City, b.Region
	r.s.businesses[b.ID] = cur
	return nil
}

func (r *Businesses) SetLogo(_ context.Context, id uint64, filename string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.businesses[id]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Logo = filename
	r.s.businesses[id] = cur
	return nil
}

// Count returns the number of stored businesses.
func (r *Businesses) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.businesses)
}

type Products struct{ s *Store }

func (r *Products) List(_ context.Context) ([]*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*model.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Products) GetByID(_ context.Context, id uint64) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *Products) Create(_ context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	r.s.products[p.ID] = *p
	return nil
}

func (r *Products) Update(_ context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	next := *p
	next.BusinessID = cur.BusinessID
	next.ProductImage = cur.ProductImage
	r.s.products[p.ID] = next
	return nil
}

func (r *Products) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r *Products) SetImage(_ context.Context, id uint64, filename string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	cur.ProductImage = filename
	r.s.products[id] = cur
	return nil
}

// Count returns the number of stored products.
func (r *Products) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.products)
}
