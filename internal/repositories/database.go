package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/aaravmahajanofficial/buyzaar/internal/config"
	_ "github.com/lib/pq"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Repositories struct {
	DB           *sql.DB
	UnitOfWork   UnitOfWork
	User         UserRepository
	Product      ProductRepository
	Cart         CartRepository
	Order        OrderRepository
	Review       ReviewRepository
	Payment      PaymentRepository
	Notification NotificationRepository
	Stats        StatsRepository
}

func New(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	db, err := otelsql.Open("postgres", cfg.Database.GetDSN(),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return NewRepositories(db), nil
}

// NewRepositories builds every repository over db.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		DB:           db,
		UnitOfWork:   NewUnitOfWork(db),
		User:         NewUserRepo(db),
		Product:      NewProductRepo(db),
		Cart:         NewCartRepo(db),
		Order:        NewOrderRepo(db),
		Review:       NewReviewRepo(db),
		Payment:      NewPaymentRepo(db),
		Notification: NewNotificationRepo(db),
		Stats:        NewStatsRepo(db),
	}
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}
