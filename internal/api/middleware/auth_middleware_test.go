package middleware_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/buyzaar/internal/api/middleware"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	"github.com/aaravmahajanofficial/buyzaar/internal/utils/response"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJwtKey = []byte("test-secret-key-123456789012345")

func createTestToken(t *testing.T, userID uuid.UUID, role models.Role, duration time.Duration, key []byte, method jwt.SigningMethod) string {
	t.Helper()

	claims := &models.Claims{
		UserID: userID,
		Email:  "test@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)

	return token
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) response.APIResponse {
	t.Helper()

	var body response.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))

	return body
}

func TestAuthenticate(t *testing.T) {
	auth := middleware.NewAuthMiddleware(testJwtKey)
	userID := uuid.New()

	var gotClaims *models.Claims

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		require.True(t, ok)
		gotClaims = claims
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectNextCall bool
	}{
		{
			name:           "Valid token",
			authHeader:     "Bearer " + createTestToken(t, userID, models.RoleUser, time.Hour, testJwtKey, jwt.SigningMethodHS256),
			expectedStatus: http.StatusOK,
			expectNextCall: true,
		},
		{
			name:           "Missing header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong scheme",
			authHeader:     "Token abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired token",
			authHeader:     "Bearer " + createTestToken(t, userID, models.RoleUser, -time.Hour, testJwtKey, jwt.SigningMethodHS256),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong key",
			authHeader:     "Bearer " + createTestToken(t, userID, models.RoleUser, time.Hour, []byte("another-key"), jwt.SigningMethodHS256),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Unexpected algorithm",
			authHeader:     "Bearer " + createTestToken(t, userID, models.RoleUser, time.Hour, testJwtKey, jwt.SigningMethodHS512),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			gotClaims = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rr := httptest.NewRecorder()

			// Act
			auth.Authenticate(next).ServeHTTP(rr, req)

			// Assert
			assert.Equal(t, tc.expectedStatus, rr.Code)

			if tc.expectNextCall {
				require.NotNil(t, gotClaims)
				assert.Equal(t, userID, gotClaims.UserID)
				assert.Equal(t, models.RoleUser, gotClaims.Role)
			} else {
				assert.Nil(t, gotClaims)
				body := decodeError(t, rr)
				assert.False(t, body.Success)
				require.NotNil(t, body.Error)
				assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
			}
		})
	}
}

func TestAdmin(t *testing.T) {
	auth := middleware.NewAuthMiddleware(testJwtKey)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("Admin passes", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer "+createTestToken(t, uuid.New(), models.RoleAdmin, time.Hour, testJwtKey, jwt.SigningMethodHS256))
		rr := httptest.NewRecorder()

		auth.Admin(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.True(t, called)
	})

	t.Run("Regular user is forbidden", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer "+createTestToken(t, uuid.New(), models.RoleUser, time.Hour, testJwtKey, jwt.SigningMethodHS256))
		rr := httptest.NewRecorder()

		auth.Admin(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.False(t, called)
		assert.Equal(t, "FORBIDDEN", decodeError(t, rr).Error.Code)
	})

	t.Run("RequireAdmin without claims", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
		rr := httptest.NewRecorder()

		auth.RequireAdmin(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, called)
	})
}

func TestLogging(t *testing.T) {
	t.Run("Propagates request ID and status", func(t *testing.T) {
		var fromCtx bool

		handler := middleware.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, fromCtx = r.Context().Value(middleware.LoggerKey).(*slog.Logger)
			w.WriteHeader(http.StatusTeapot)
		}))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "req-123")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusTeapot, rr.Code)
		assert.Equal(t, "req-123", rr.Header().Get("X-Request-ID"))
		assert.True(t, fromCtx)
	})

	t.Run("Generates request ID", func(t *testing.T) {
		handler := middleware.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NotNil(t, middleware.LoggerFromContext(r.Context()))
		}))

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		_, err := uuid.Parse(rr.Header().Get("X-Request-ID"))
		assert.NoError(t, err)
	})
}
