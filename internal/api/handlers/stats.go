package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/buyzaar/internal/api/middleware"
	service "github.com/aaravmahajanofficial/buyzaar/internal/services"
	"github.com/aaravmahajanofficial/buyzaar/internal/utils/response"
)

type StatsHandler struct {
	statsService service.StatsService
}

func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetDashboardStats godoc
//
//	@Summary		Dashboard totals
//	@Description	Product, order and user counts plus revenue from orders that were not cancelled.
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	response.APIResponse{data=models.DashboardStats}
//	@Failure		403	{object}	response.APIResponse	"Admin access required"
//	@Failure		500	{object}	response.APIResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/admin/stats [get]
func (h *StatsHandler) GetDashboardStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		stats, err := h.statsService.GetDashboardStats(r.Context())
		if err != nil {
			logger.Error("Failed to load dashboard stats", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, stats)
	}
}
