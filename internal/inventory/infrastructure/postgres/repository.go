package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/storefront/internal/inventory/domain"
	orderdom "github.com/dmehra2102/storefront/internal/order/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS stock_adjustments (
		order_id BIGINT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL
	)`)
	return err
}

func (r *Repository) Decrement(ctx context.Context, orderID int64, items []orderdom.OrderItem) ([]domain.Adjustment, bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `INSERT INTO stock_adjustments (order_id, created_at) VALUES ($1,$2) ON CONFLICT (order_id) DO NOTHING`,
		orderID, time.Now().UTC())
	if err != nil {
		return nil, false, err
	}
	if tag.RowsAffected() == 0 {
		return nil, false, nil
	}

	adjustments := make([]domain.Adjustment, 0, len(items))
	for _, it := range items {
		var available int
		err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id=$1 FOR UPDATE`, it.ProductID).Scan(&available)
		if errors.Is(err, pgx.ErrNoRows) {
			adjustments = append(adjustments, domain.NewAdjustment(it.ProductID, it.Quantity, 0))
			continue
		}
		if err != nil {
			return nil, false, err
		}
		if _, err := tx.Exec(ctx, `UPDATE products SET stock = GREATEST(stock - $2, 0) WHERE id=$1`, it.ProductID, it.Quantity); err != nil {
			return nil, false, err
		}
		adjustments = append(adjustments, domain.NewAdjustment(it.ProductID, it.Quantity, available))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return adjustments, true, nil
}
