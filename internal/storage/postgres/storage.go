package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/dealerflow/internal/domain/errors"
	"github.com/polkiloo/dealerflow/internal/domain/repository"
)

// querier is the subset shared by the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxPool interface {
	querier
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

type txKey struct{}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) History() repository.StatusHistoryRepository {
	return &historyRepository{storage: s}
}

func (s *Storage) Vehicles() repository.VehicleRepository {
	return &vehicleRepository{storage: s}
}

func (s *Storage) Calculations() repository.CalculationRepository {
	return &calculationRepository{storage: s}
}

func (s *Storage) Ownerships() repository.OwnershipRepository {
	return &ownershipRepository{storage: s}
}

func (s *Storage) Invitations() repository.QuoteInvitationRepository {
	return &invitationRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            kind TEXT NOT NULL,
            creator_id BIGINT NOT NULL DEFAULT 0,
            status INTEGER NOT NULL DEFAULT 1,
            total_purchase_price BIGINT NOT NULL DEFAULT 0,
            total_sales_price BIGINT NOT NULL DEFAULT 0,
            total_sales_price_service_items BIGINT NOT NULL DEFAULT 0,
            total_payment_amount BIGINT NOT NULL DEFAULT 0,
            discount BIGINT NOT NULL DEFAULT 0,
            down_payment BOOLEAN NOT NULL DEFAULT FALSE,
            down_payment_amount BIGINT NOT NULL DEFAULT 0,
            paid_at TIMESTAMPTZ,
            customer_id BIGINT,
            customer_company_id BIGINT,
            locale TEXT NOT NULL DEFAULT '',
            documentable_kind TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS vehicles (
            id BIGSERIAL PRIMARY KEY,
            stock TEXT NOT NULL DEFAULT 'Stock',
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_vehicles (
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            vehicle_id BIGINT NOT NULL REFERENCES vehicles(id),
            PRIMARY KEY (order_id, vehicle_id)
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            name TEXT NOT NULL,
            purchase_price BIGINT NOT NULL DEFAULT 0,
            sale_price BIGINT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS order_services (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            name TEXT NOT NULL,
            purchase_price BIGINT NOT NULL DEFAULT 0,
            sale_price BIGINT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS order_files (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            file_group TEXT NOT NULL,
            name TEXT NOT NULL,
            path TEXT NOT NULL,
            kind TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS document_lines (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            name TEXT NOT NULL,
            vat_percentage BIGINT NOT NULL DEFAULT 0,
            price_exclude_vat BIGINT NOT NULL DEFAULT 0,
            vat BIGINT NOT NULL DEFAULT 0,
            price_include_vat BIGINT NOT NULL DEFAULT 0,
            line_type TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS status_history (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            status INTEGER NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS calculations (
            ownable_type TEXT NOT NULL,
            ownable_id BIGINT NOT NULL,
            sales_price_net BIGINT NOT NULL DEFAULT 0,
            vat_percentage BIGINT NOT NULL DEFAULT 0,
            rest_bpm_indication BIGINT NOT NULL DEFAULT 0,
            leges_vat BIGINT NOT NULL DEFAULT 0,
            purchase_cost_items_services BIGINT NOT NULL DEFAULT 0,
            sale_price_net_including_services_and_products BIGINT NOT NULL DEFAULT 0,
            sale_price_services_and_products BIGINT NOT NULL DEFAULT 0,
            discount BIGINT NOT NULL DEFAULT 0,
            vat BIGINT NOT NULL DEFAULT 0,
            sales_price_incl_vat_or_margin BIGINT NOT NULL DEFAULT 0,
            sales_price_total BIGINT NOT NULL DEFAULT 0,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (ownable_type, ownable_id)
        )`,
		`CREATE TABLE IF NOT EXISTS ownerships (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL,
            ownable_type TEXT NOT NULL,
            ownable_id BIGINT NOT NULL,
            creator_id BIGINT NOT NULL,
            status TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS quote_invitations (
            id BIGSERIAL PRIMARY KEY,
            quote_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            customer_id BIGINT NOT NULL,
            customer_company_id BIGINT,
            creator_id BIGINT NOT NULL,
            status TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_kind ON orders(kind, status)`,
		`CREATE INDEX IF NOT EXISTS idx_order_vehicles_vehicle ON order_vehicles(vehicle_id)`,
		`CREATE INDEX IF NOT EXISTS idx_status_history_order ON status_history(order_id, id)`,
		`CREATE INDEX IF NOT EXISTS idx_ownerships_ownable ON ownerships(ownable_type, ownable_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_ownerships_accepted ON ownerships(ownable_type, ownable_id) WHERE status = 'Accepted'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_quote_invitations_accepted ON quote_invitations(quote_id) WHERE status = 'Accepted'`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTransaction runs fn inside a transaction carried by the returned context.
// A nested call joins the transaction already present in ctx.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(context.WithValue(ctx, txKey{}, tx))
	return err
}

// q returns the transaction bound to ctx, or the pool.
func (s *Storage) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// mapError translates driver errors into domain errors.
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domainErrors.ErrAlreadyExists
	}
	return err
}

func expectAffected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

var (
	_ repository.Transactor = (*Storage)(nil)
	_ repository.Factory    = (*Storage)(nil)
)
