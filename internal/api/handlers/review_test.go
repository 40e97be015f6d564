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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReviewHandler_AddReview(t *testing.T) {
	productID := uuid.New()

	tests := []struct {
		name           string
		body           any
		err            error
		callsService   bool
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           models.CreateReviewRequest{ProductID: productID, Rating: 4, Comment: "Solid lamp"},
			callsService:   true,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Rating out of range",
			body:           models.CreateReviewRequest{ProductID: productID, Rating: 6},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Not purchased",
			body:           models.CreateReviewRequest{ProductID: productID, Rating: 3},
			err:            appErrors.NotAuthorizedError("You can only review products you have purchased"),
			callsService:   true,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Already reviewed",
			body:           models.CreateReviewRequest{ProductID: productID, Rating: 3},
			err:            appErrors.DuplicateReviewError(),
			callsService:   true,
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			reviewService := mocks.NewReviewService(t)
			handler := handlers.NewReviewHandler(reviewService)
			userID := uuid.New()

			if tc.callsService {
				var review *models.Review
				if tc.err == nil {
					review = &models.Review{ID: uuid.New(), UserID: userID, ProductID: productID, Rating: 4, Comment: "Solid lamp"}
				}

				reviewService.On("AddReview", mock.Anything, userID, mock.AnythingOfType("*models.CreateReviewRequest")).
					Return(review, tc.err).Once()
			}

			r := testutils.CreateTestRequestWithContext(http.MethodPost, "/reviews", jsonBody(t, tc.body), userID, nil)
			rr := httptest.NewRecorder()

			// Act
			handler.AddReview().ServeHTTP(rr, r)

			// Assert
			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}
}

func TestReviewHandler_ListProductReviews(t *testing.T) {
	// Arrange
	reviewService := mocks.NewReviewService(t)
	handler := handlers.NewReviewHandler(reviewService)
	productID := uuid.New()
	reviews := []*models.Review{{ID: uuid.New(), ProductID: productID, Rating: 5}, {ID: uuid.New(), ProductID: productID, Rating: 2}}

	reviewService.On("ListProductReviews", mock.Anything, productID).Return(reviews, nil).Once()

	r := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/products/"+productID.String()+"/reviews", nil,
		map[string]string{"id": productID.String()})
	rr := httptest.NewRecorder()

	// Act
	handler.ListProductReviews().ServeHTTP(rr, r)

	// Assert
	assert.Equal(t, http.StatusOK, rr.Code)

	var got []models.Review
	testutils.DecodeResponse(t, rr, &got)
	require.Len(t, got, 2)
	assert.Equal(t, 5, got[0].Rating)
}

func TestReviewHandler_UpdateReview(t *testing.T) {
	t.Run("Author edits the rating", func(t *testing.T) {
		// Arrange
		reviewService := mocks.NewReviewService(t)
		handler := handlers.NewReviewHandler(reviewService)
		userID := uuid.New()
		reviewID := uuid.New()
		rating := 2

		reviewService.On("UpdateReview", mock.Anything, models.Actor{UserID: userID, Role: models.RoleUser}, reviewID,
			&models.UpdateReviewRequest{Rating: &rating}).
			Return(&models.Review{ID: reviewID, Rating: rating}, nil).Once()

		r := testutils.CreateTestRequestWithContext(http.MethodPut, "/reviews/"+reviewID.String(),
			jsonBody(t, models.UpdateReviewRequest{Rating: &rating}), userID,
			map[string]string{"id": reviewID.String()})
		rr := httptest.NewRecorder()

		// Act
		handler.UpdateReview().ServeHTTP(rr, r)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Not the author", func(t *testing.T) {
		reviewService := mocks.NewReviewService(t)
		handler := handlers.NewReviewHandler(reviewService)
		reviewID := uuid.New()
		rating := 1

		reviewService.On("UpdateReview", mock.Anything, mock.Anything, reviewID, mock.Anything).
			Return(nil, appErrors.NotAuthorizedError("Not your review")).Once()

		r := testutils.CreateTestRequestWithContext(http.MethodPut, "/reviews/"+reviewID.String(),
			jsonBody(t, models.UpdateReviewRequest{Rating: &rating}), uuid.New(), map[string]string{"id": reviewID.String()})
		rr := httptest.NewRecorder()

		handler.UpdateReview().ServeHTTP(rr, r)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestReviewHandler_DeleteReview(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		reviewService := mocks.NewReviewService(t)
		handler := handlers.NewReviewHandler(reviewService)
		userID := uuid.New()
		reviewID := uuid.New()

		reviewService.On("DeleteReview", mock.Anything, models.Actor{UserID: userID, Role: models.RoleUser}, reviewID).Return(nil).Once()

		r := testutils.CreateTestRequestWithContext(http.MethodDelete, "/reviews/"+reviewID.String(), nil, userID,
			map[string]string{"id": reviewID.String()})
		rr := httptest.NewRecorder()

		// Act
		handler.DeleteReview().ServeHTTP(rr, r)

		// Assert
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
	})

	t.Run("Missing", func(t *testing.T) {
		reviewService := mocks.NewReviewService(t)
		handler := handlers.NewReviewHandler(reviewService)
		reviewID := uuid.New()

		reviewService.On("DeleteReview", mock.Anything, mock.Anything, reviewID).Return(appErrors.NotFoundError("Review not found")).Once()

		r := testutils.CreateTestRequestWithContext(http.MethodDelete, "/reviews/"+reviewID.String(), nil, uuid.New(),
			map[string]string{"id": reviewID.String()})
		rr := httptest.NewRecorder()

		handler.DeleteReview().ServeHTTP(rr, r)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
