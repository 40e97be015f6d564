package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/buyzaar/internal/api/middleware"
	"github.com/aaravmahajanofficial/buyzaar/internal/errors"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	"github.com/aaravmahajanofficial/buyzaar/internal/utils/response"
)

// requireClaims returns the caller's claims and a logger tagged with their id.
// Without claims it writes a 401 and reports false.
func requireClaims(w http.ResponseWriter, r *http.Request) (*models.Claims, *slog.Logger, bool) {
	logger := middleware.LoggerFromContext(r.Context())

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		logger.Warn("Request without user claims", slog.String("path", r.URL.Path))
		response.Error(w, errors.UnauthorizedError("Authentication required"))

		return nil, logger, false
	}

	return claims, logger.With(slog.String("userId", claims.UserID.String())), true
}
