package service

import (
	"context"

	appErrors "github.com/aaravmahajanofficial/buyzaar/internal/errors"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	repository "github.com/aaravmahajanofficial/buyzaar/internal/repositories"
	"golang.org/x/sync/errgroup"
)

type StatsService interface {
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

type statsService struct {
	repo repository.StatsRepository
}

func NewStatsService(repo repository.StatsRepository) StatsService {
	return &statsService{repo: repo}
}

// GetDashboardStats runs the four aggregate queries concurrently and fails if
// any of them fails.
func (s *statsService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.repo.CountProducts(gctx)
		stats.TotalProducts = n

		return err
	})

	g.Go(func() error {
		n, err := s.repo.CountOrders(gctx)
		stats.TotalOrders = n

		return err
	})

	g.Go(func() error {
		n, err := s.repo.CountUsers(gctx)
		stats.TotalUsers = n

		return err
	})

	g.Go(func() error {
		revenue, err := s.repo.TotalRevenue(gctx)
		stats.TotalRevenue = revenue

		return err
	})

	if err := g.Wait(); err != nil {
		return nil, appErrors.DatabaseError("Failed to load dashboard stats").WithError(err)
	}

	return stats, nil
}
