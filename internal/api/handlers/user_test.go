package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aaravmahajanofficial/buyzaar/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/buyzaar/internal/errors"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	"github.com/aaravmahajanofficial/buyzaar/internal/services/mocks"
	"github.com/aaravmahajanofficial/buyzaar/internal/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_Register(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		userService := mocks.NewUserService(t)
		handler := handlers.NewUserHandler(userService)
		req := models.RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "P@ssword123!"}
		user := &models.User{ID: uuid.New(), Name: req.Name, Email: req.Email, Role: models.RoleUser}

		userService.On("Register", mock.Anything, &req).Return(user, nil).Once()

		r := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/register", jsonBody(t, req), nil)
		rr := httptest.NewRecorder()

		// Act
		handler.Register().ServeHTTP(rr, r)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)

		var got models.User
		resp := testutils.DecodeResponse(t, rr, &got)
		assert.True(t, resp.Success)
		assert.Equal(t, user.ID, got.ID)
		assert.NotContains(t, rr.Body.String(), req.Password)
	})

	t.Run("Invalid email", func(t *testing.T) {
		// Arrange
		userService := mocks.NewUserService(t)
		handler := handlers.NewUserHandler(userService)
		body := jsonBody(t, models.RegisterRequest{Name: "Asha", Email: "not-an-email", Password: "P@ssword123!"})

		r := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/register", body, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.Register().ServeHTTP(rr, r)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		userService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		// Arrange
		userService := mocks.NewUserService(t)
		handler := handlers.NewUserHandler(userService)
		req := models.RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "P@ssword123!"}

		userService.On("Register", mock.Anything, mock.Anything).
			Return(nil, appErrors.DuplicateEntryError("Email already registered")).Once()

		r := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/register", jsonBody(t, req), nil)
		rr := httptest.NewRecorder()

		// Act
		handler.Register().ServeHTTP(rr, r)

		// Assert
		assert.Equal(t, http.StatusConflict, rr.Code)

		resp := testutils.DecodeResponse(t, rr, nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, appErrors.ErrCodeDuplicateEntry, resp.Error.Code)
	})
}

func TestUserHandler_Login(t *testing.T) {
	req := models.LoginRequest{Email: "asha@example.com", Password: "secret"}

	tests := []struct {
		name           string
		serviceResp    *models.LoginResponse
		expectedStatus int
	}{
		{
			name:           "Success",
			serviceResp:    &models.LoginResponse{Success: true, Token: "jwt", ExpiresIn: 3600},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid credentials",
			serviceResp:    &models.LoginResponse{Success: false, RemainingTries: 3, Message: "Invalid email or password"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Rate limited",
			serviceResp:    &models.LoginResponse{Success: false, RetryAfter: 60, Message: "Too many login attempts"},
			expectedStatus: http.StatusTooManyRequests,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			userService := mocks.NewUserService(t)
			handler := handlers.NewUserHandler(userService)
			userService.On("Login", mock.Anything, &req).Return(tc.serviceResp, nil).Once()

			r := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/login", jsonBody(t, req), nil)
			rr := httptest.NewRecorder()

			// Act
			handler.Login().ServeHTTP(rr, r)

			// Assert
			assert.Equal(t, tc.expectedStatus, rr.Code)

			var got models.LoginResponse
			testutils.DecodeResponse(t, rr, &got)
			assert.Equal(t, *tc.serviceResp, got)
		})
	}

	t.Run("Malformed body", func(t *testing.T) {
		userService := mocks.NewUserService(t)
		handler := handlers.NewUserHandler(userService)
		r := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/login", strings.NewReader("{"), nil)
		rr := httptest.NewRecorder()

		handler.Login().ServeHTTP(rr, r)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUserHandler_Profile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		userService := mocks.NewUserService(t)
		handler := handlers.NewUserHandler(userService)
		userID := uuid.New()
		userService.On("GetUserByID", mock.Anything, userID).Return(&models.User{ID: userID, Email: "asha@example.com"}, nil).Once()

		r := testutils.CreateTestRequestWithContext(http.MethodGet, "/users/profile", nil, userID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.Profile().ServeHTTP(rr, r)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var got models.User
		testutils.DecodeResponse(t, rr, &got)
		assert.Equal(t, userID, got.ID)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		userService := mocks.NewUserService(t)
		handler := handlers.NewUserHandler(userService)
		r := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/users/profile", nil, nil)
		rr := httptest.NewRecorder()

		handler.Profile().ServeHTTP(rr, r)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
