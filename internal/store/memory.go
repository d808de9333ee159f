package store

import (
	"context"
	"sort"
	"sync"

	"github.com/pawmart/pawmart/pkg/models"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests and
// zero-configuration development; the mutex also serializes concurrent
// order creation, so the conditional stock decrement cannot oversell.
type MemoryStore struct {
	mu sync.RWMutex

	products map[int64]models.Product
	accounts map[int64]models.Account
	orders   map[int64]models.Order
	cart     map[int64]models.CartItem

	nextProductID int64
	nextAccountID int64
	nextOrderID   int64
	nextCartID    int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]models.Product),
		accounts: make(map[int64]models.Account),
		orders:   make(map[int64]models.Order),
		cart:     make(map[int64]models.CartItem),
	}
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

// ── Catalog ─────────────────────────────────────────────────

func (m *MemoryStore) ListProducts(ctx context.Context, category string, limit int) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit = ClampLimit(limit)
	out := make([]models.Product, 0, limit)
	for _, p := range m.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) GetProductByName(ctx context.Context, name string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.products {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CreateProduct(ctx context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == 0 {
		m.nextProductID++
		p.ID = m.nextProductID
	} else if p.ID > m.nextProductID {
		m.nextProductID = p.ID
	}
	m.products[p.ID] = *p
	return nil
}

// ── Accounts ────────────────────────────────────────────────

func (m *MemoryStore) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *MemoryStore) GetAccountByPhone(ctx context.Context, phone string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.accounts {
		if a.PhoneNumber == phone {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CreateAccount(ctx context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.accounts {
		if existing.PhoneNumber == a.PhoneNumber {
			return ErrDuplicatePhone
		}
	}
	m.nextAccountID++
	a.ID = m.nextAccountID
	m.accounts[a.ID] = *a
	return nil
}

// ── Orders ──────────────────────────────────────────────────

func (m *MemoryStore) ListOrders(ctx context.Context, accountID int64, limit int) ([]models.OrderRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit = ClampLimit(limit)
	out := make([]models.OrderRow, 0, limit)
	for _, o := range m.orders {
		if o.AccountID != accountID {
			continue
		}
		row := models.OrderRow{
			ID:     o.ID,
			Date:   o.Date,
			Status: o.Status,
			Amount: o.Amount,
			Price:  o.Price,
		}
		if p, ok := m.products[o.ProductID]; ok {
			row.ProductName = p.Name
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) CreateOrder(ctx context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[o.ProductID]
	if !ok {
		return ErrNotFound
	}
	if p.Stock < o.Amount {
		return ErrInsufficientStock
	}
	p.Stock -= o.Amount
	m.products[p.ID] = p

	m.nextOrderID++
	o.ID = m.nextOrderID
	m.orders[o.ID] = *o
	return nil
}

func (m *MemoryStore) DeleteOrder(ctx context.Context, id, accountID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok || o.AccountID != accountID {
		return ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

// ── Cart ────────────────────────────────────────────────────

func (m *MemoryStore) ListCartItems(ctx context.Context, accountID int64) ([]models.CartItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.CartItem{}
	for _, item := range m.cart {
		if item.AccountID != accountID {
			continue
		}
		if p, ok := m.products[item.ProductID]; ok {
			item.Name = p.Name
			item.UnitPrice = p.Price
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) AddCartItem(ctx context.Context, item *models.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[item.ProductID]; !ok {
		return ErrNotFound
	}
	m.nextCartID++
	item.ID = m.nextCartID
	m.cart[item.ID] = *item
	return nil
}

func (m *MemoryStore) DeleteCartItem(ctx context.Context, id, accountID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.cart[id]
	if !ok || item.AccountID != accountID {
		return ErrNotFound
	}
	delete(m.cart, id)
	return nil
}
