// Package store provides the storage interface and implementations for the
// PawMart backend. All handler and executor code depends on the Store
// interface, making it easy to swap between in-memory (tests, zero-config
// dev) and PostgreSQL (production) implementations.
package store

import (
	"context"
	"errors"

	"github.com/pawmart/pawmart/pkg/models"
)

// Sentinel errors returned by implementations. Callers map these onto the
// API-facing error taxonomy.
var (
	ErrNotFound          = errors.New("store: not found")
	ErrInsufficientStock = errors.New("store: insufficient stock")
	ErrDuplicatePhone    = errors.New("store: phone number already registered")
)

// Store is the primary storage interface for the backend.
type Store interface {
	CatalogStore
	AccountStore
	OrderStore
	CartStore

	// Ping checks if the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the store.
	Close() error
}

// ── Catalog ─────────────────────────────────────────────────

type CatalogStore interface {
	// ListProducts returns up to limit products, newest first (descending id).
	// An empty category means all categories.
	ListProducts(ctx context.Context, category string, limit int) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	// GetProductByName resolves a product by exact name match.
	GetProductByName(ctx context.Context, name string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
}

// ── Accounts ────────────────────────────────────────────────

type AccountStore interface {
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
	GetAccountByPhone(ctx context.Context, phone string) (*models.Account, error)
	// CreateAccount returns ErrDuplicatePhone when the phone number is taken.
	CreateAccount(ctx context.Context, a *models.Account) error
}

// ── Orders ──────────────────────────────────────────────────

type OrderStore interface {
	// ListOrders returns up to limit of the account's orders, most recent first.
	ListOrders(ctx context.Context, accountID int64, limit int) ([]models.OrderRow, error)

	// CreateOrder inserts the order and decrements the product's stock in one
	// atomic step. Returns ErrNotFound when the product does not exist and
	// ErrInsufficientStock when stock < amount; on success o.ID is set.
	CreateOrder(ctx context.Context, o *models.Order) error

	// DeleteOrder removes the order only if it belongs to accountID;
	// ErrNotFound otherwise.
	DeleteOrder(ctx context.Context, id, accountID int64) error
}

// ── Cart ────────────────────────────────────────────────────

type CartStore interface {
	ListCartItems(ctx context.Context, accountID int64) ([]models.CartItem, error)
	AddCartItem(ctx context.Context, item *models.CartItem) error
	DeleteCartItem(ctx context.Context, id, accountID int64) error
}

// ClampLimit bounds a requested row count to [1,50], defaulting to 20.
// Keeps a single tool call from dragging the whole table into the model
// context.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 50 {
		return 50
	}
	return limit
}
