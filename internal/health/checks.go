package health

import (
	"context"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/buyzaar/internal/config"
	"github.com/aaravmahajanofficial/buyzaar/pkg/stripe"
	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

const (
	ComponentName    = "buyzaar"
	ComponentVersion = "1.0.0"
)

// NewHealthHandler checks Postgres and Redis. Stripe is probed only when a
// client is given and its failure does not mark the service unavailable.
func NewHealthHandler(cfg *config.Config, stripeClient stripe.Client) (*health.Health, error) {
	checks := []health.Config{
		{
			Name:    "database",
			Timeout: 3 * time.Second,
			Check: postgres.New(postgres.Config{
				DSN: cfg.Database.GetDSN(),
			}),
		},
		{
			Name:    "redis",
			Timeout: 2 * time.Second,
			Check: healthRedis.New(healthRedis.Config{
				DSN: cfg.RedisConnect.GetDSN(),
			}),
		},
	}

	if stripeClient != nil {
		checks = append(checks, health.Config{
			Name:      "stripe",
			Timeout:   5 * time.Second,
			SkipOnErr: true,
			Check:     stripeCheck(stripeClient),
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{Name: ComponentName, Version: ComponentVersion}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}

func stripeCheck(client stripe.Client) health.CheckFunc {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to stripe: %w", err)
		}

		return nil
	}
}
