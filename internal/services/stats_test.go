package service_test

import (
	"errors"
	"testing"

	appErrors "github.com/aaravmahajanofficial/buyzaar/internal/errors"
	"github.com/aaravmahajanofficial/buyzaar/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/buyzaar/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestStatsService_GetDashboardStats(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		// Arrange
		statsRepo := mocks.NewStatsRepository(t)
		statsService := service.NewStatsService(statsRepo)

		statsRepo.On("CountProducts", mock.Anything).Return(int64(12), nil).Once()
		statsRepo.On("CountOrders", mock.Anything).Return(int64(30), nil).Once()
		statsRepo.On("CountUsers", mock.Anything).Return(int64(8), nil).Once()
		statsRepo.On("TotalRevenue", mock.Anything).Return(decimal.RequireFromString("1234.50"), nil).Once()

		// Act
		stats, err := statsService.GetDashboardStats(t.Context())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(12), stats.TotalProducts)
		assert.Equal(t, int64(30), stats.TotalOrders)
		assert.Equal(t, int64(8), stats.TotalUsers)
		assert.True(t, decimal.RequireFromString("1234.50").Equal(stats.TotalRevenue))
	})

	t.Run("Any failing query fails the dashboard", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		// Arrange
		statsRepo := mocks.NewStatsRepository(t)
		statsService := service.NewStatsService(statsRepo)
		dbErr := errors.New("statement timeout")

		statsRepo.On("CountProducts", mock.Anything).Return(int64(12), nil).Maybe()
		statsRepo.On("CountOrders", mock.Anything).Return(int64(0), dbErr).Once()
		statsRepo.On("CountUsers", mock.Anything).Return(int64(8), nil).Maybe()
		statsRepo.On("TotalRevenue", mock.Anything).Return(decimal.Zero, nil).Maybe()

		// Act
		stats, err := statsService.GetDashboardStats(t.Context())

		// Assert
		assert.Nil(t, stats)
		requireAppError(t, err, appErrors.ErrCodeDatabaseError)
		assert.ErrorIs(t, err, dbErr)
	})
}
