package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/buyzaar/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/buyzaar/internal/errors"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	"github.com/aaravmahajanofficial/buyzaar/internal/services/mocks"
	"github.com/aaravmahajanofficial/buyzaar/internal/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestStatsHandler_GetDashboardStats(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		statsService := mocks.NewStatsService(t)
		handler := handlers.NewStatsHandler(statsService)
		stats := &models.DashboardStats{TotalProducts: 4, TotalOrders: 9, TotalUsers: 3, TotalRevenue: decimal.RequireFromString("310.75")}

		statsService.On("GetDashboardStats", mock.Anything).Return(stats, nil).Once()

		r := testutils.CreateTestRequestWithRole(http.MethodGet, "/admin/stats", nil, uuid.New(), models.RoleAdmin, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.GetDashboardStats().ServeHTTP(rr, r)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var got models.DashboardStats
		testutils.DecodeResponse(t, rr, &got)
		assert.Equal(t, int64(9), got.TotalOrders)
		assert.True(t, stats.TotalRevenue.Equal(got.TotalRevenue))
	})

	t.Run("Failure", func(t *testing.T) {
		statsService := mocks.NewStatsService(t)
		handler := handlers.NewStatsHandler(statsService)
		statsService.On("GetDashboardStats", mock.Anything).Return(nil, appErrors.DatabaseError("Failed to load dashboard stats")).Once()

		r := testutils.CreateTestRequestWithRole(http.MethodGet, "/admin/stats", nil, uuid.New(), models.RoleAdmin, nil)
		rr := httptest.NewRecorder()

		handler.GetDashboardStats().ServeHTTP(rr, r)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
