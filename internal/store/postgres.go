package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/pawmart/pawmart/pkg/models"
)

// PostgresStore implements Store on a pgx connection pool. Per-row
// ownership predicates (WHERE account_id = $n) provide request isolation;
// the only cross-request coordination is the conditional stock decrement
// inside CreateOrder's transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, pings, and runs the idempotent migration.
func NewPostgresStore(ctx context.Context, connURL string, maxConns int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}

	log.Info().Int("max_conns", maxConns).Msg("postgres store initialized")
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS products (
			id      BIGSERIAL PRIMARY KEY,
			name    TEXT NOT NULL,
			price   NUMERIC(10,2) NOT NULL,
			stock   INTEGER NOT NULL DEFAULT 0,
			class   TEXT NOT NULL DEFAULT '',
			img_url TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS accounts (
			id           BIGSERIAL PRIMARY KEY,
			phone_number TEXT NOT NULL UNIQUE,
			password     TEXT NOT NULL,
			name         TEXT NOT NULL,
			avatar_url   TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS orders (
			id         BIGSERIAL PRIMARY KEY,
			account_id BIGINT NOT NULL REFERENCES accounts(id),
			date       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			status     TEXT NOT NULL,
			product_id BIGINT NOT NULL REFERENCES products(id),
			amount     INTEGER NOT NULL,
			price      NUMERIC(10,2) NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_orders_account ON orders(account_id, date DESC);

		CREATE TABLE IF NOT EXISTS cart (
			id          BIGSERIAL PRIMARY KEY,
			account_id  BIGINT NOT NULL REFERENCES accounts(id),
			product_id  BIGINT NOT NULL REFERENCES products(id),
			amount      INTEGER NOT NULL,
			total_price NUMERIC(10,2) NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_cart_account ON cart(account_id);
	`
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// ── Catalog ─────────────────────────────────────────────────

func (s *PostgresStore) ListProducts(ctx context.Context, category string, limit int) ([]models.Product, error) {
	limit = ClampLimit(limit)

	query := `
		SELECT id, name, price, stock, class, img_url
		FROM products
		WHERE ($1 = '' OR class = $1)
		ORDER BY id DESC
		LIMIT $2`
	rows, err := s.pool.Query(ctx, query, category, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Category, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.getProduct(ctx, `SELECT id, name, price, stock, class, img_url FROM products WHERE id = $1`, id)
}

func (s *PostgresStore) GetProductByName(ctx context.Context, name string) (*models.Product, error) {
	return s.getProduct(ctx, `SELECT id, name, price, stock, class, img_url FROM products WHERE name = $1 LIMIT 1`, name)
}

func (s *PostgresStore) getProduct(ctx context.Context, query string, arg any) (*models.Product, error) {
	var p models.Product
	err := s.pool.QueryRow(ctx, query, arg).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Category, &p.ImageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) CreateProduct(ctx context.Context, p *models.Product) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO products (name, price, stock, class, img_url) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		p.Name, p.Price, p.Stock, p.Category, p.ImageURL,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// ── Accounts ────────────────────────────────────────────────

func (s *PostgresStore) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	return s.getAccount(ctx, `SELECT id, phone_number, password, name, avatar_url FROM accounts WHERE id = $1`, id)
}

func (s *PostgresStore) GetAccountByPhone(ctx context.Context, phone string) (*models.Account, error) {
	return s.getAccount(ctx, `SELECT id, phone_number, password, name, avatar_url FROM accounts WHERE phone_number = $1`, phone)
}

func (s *PostgresStore) getAccount(ctx context.Context, query string, arg any) (*models.Account, error) {
	var a models.Account
	err := s.pool.QueryRow(ctx, query, arg).Scan(&a.ID, &a.PhoneNumber, &a.Password, &a.Name, &a.AvatarURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) CreateAccount(ctx context.Context, a *models.Account) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE phone_number = $1)`, a.PhoneNumber,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check phone: %w", err)
	}
	if exists {
		return ErrDuplicatePhone
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO accounts (phone_number, password, name, avatar_url) VALUES ($1, $2, $3, $4) RETURNING id`,
		a.PhoneNumber, a.Password, a.Name, a.AvatarURL,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// ── Orders ──────────────────────────────────────────────────

func (s *PostgresStore) ListOrders(ctx context.Context, accountID int64, limit int) ([]models.OrderRow, error) {
	limit = ClampLimit(limit)

	query := `
		SELECT o.id, o.date, o.status, o.amount, o.price, COALESCE(p.name, '')
		FROM orders o
		LEFT JOIN products p ON o.product_id = p.id
		WHERE o.account_id = $1
		ORDER BY o.date DESC, o.id DESC
		LIMIT $2`
	rows, err := s.pool.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := []models.OrderRow{}
	for rows.Next() {
		var r models.OrderRow
		if err := rows.Scan(&r.ID, &r.Date, &r.Status, &r.Amount, &r.Price, &r.ProductName); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateOrder decrements stock and inserts the order in one transaction.
// The conditional UPDATE is the oversell guard: two concurrent orders for
// the last units serialize on the row lock and the loser sees zero rows
// affected.
func (s *PostgresStore) CreateOrder(ctx context.Context, o *models.Order) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`,
		o.ProductID, o.Amount,
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, o.ProductID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check product: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInsufficientStock
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO orders (account_id, date, status, product_id, amount, price)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		o.AccountID, o.Date, o.Status, o.ProductID, o.Amount, o.Price,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) DeleteOrder(ctx context.Context, id, accountID int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM orders WHERE id = $1 AND account_id = $2`, id, accountID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ── Cart ────────────────────────────────────────────────────

func (s *PostgresStore) ListCartItems(ctx context.Context, accountID int64) ([]models.CartItem, error) {
	query := `
		SELECT c.id, c.account_id, c.product_id, c.amount, c.total_price,
		       COALESCE(p.name, ''), COALESCE(p.price, 0)
		FROM cart c
		LEFT JOIN products p ON c.product_id = p.id
		WHERE c.account_id = $1
		ORDER BY c.id`
	rows, err := s.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	defer rows.Close()

	out := []models.CartItem{}
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.ID, &item.AccountID, &item.ProductID, &item.Amount,
			&item.TotalPrice, &item.Name, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AddCartItem(ctx context.Context, item *models.CartItem) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO cart (account_id, product_id, amount, total_price)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		item.AccountID, item.ProductID, item.Amount, item.TotalPrice,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteCartItem(ctx context.Context, id, accountID int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM cart WHERE id = $1 AND account_id = $2`, id, accountID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
