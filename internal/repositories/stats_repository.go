package repository

import (
	"context"
	"fmt"

	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	"github.com/aaravmahajanofficial/buyzaar/internal/utils"
	"github.com/shopspring/decimal"
)

type StatsRepository interface {
	CountProducts(ctx context.Context) (int64, error)
	CountOrders(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	// TotalRevenue sums order totals, excluding cancelled orders.
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
}

type statsRepository struct {
	DB DBTX
}

func NewStatsRepo(db DBTX) StatsRepository {
	return &statsRepository{DB: db}
}

func (r *statsRepository) count(ctx context.Context, table string) (int64, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var n int64

	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	return n, nil
}

func (r *statsRepository) CountProducts(ctx context.Context) (int64, error) {
	return r.count(ctx, "products")
}

func (r *statsRepository) CountOrders(ctx context.Context) (int64, error) {
	return r.count(ctx, "orders")
}

func (r *statsRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.count(ctx, "users")
}

func (r *statsRepository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var revenue decimal.Decimal

	query := `SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE order_status <> $1`

	if err := r.DB.QueryRowContext(dbCtx, query, models.OrderStatusCancelled).Scan(&revenue); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}

	return revenue, nil
}
