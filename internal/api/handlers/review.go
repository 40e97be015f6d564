package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/buyzaar/internal/api/middleware"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	service "github.com/aaravmahajanofficial/buyzaar/internal/services"
	"github.com/aaravmahajanofficial/buyzaar/internal/utils"
	"github.com/aaravmahajanofficial/buyzaar/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type ReviewHandler struct {
	reviewService service.ReviewService
	validator     *validator.Validate
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, validator: validator.New()}
}

// AddReview godoc
//
//	@Summary		Review a purchased product
//	@Description	One review per user and product. The product's rating is recalculated.
//	@Tags			Reviews
//	@Accept			json
//	@Produce		json
//	@Param			review	body		models.CreateReviewRequest	true	"Rating and comment"
//	@Success		201		{object}	response.APIResponse{data=models.Review}
//	@Failure		400		{object}	response.APIResponse	"Validation error"
//	@Failure		403		{object}	response.APIResponse	"Product not purchased"
//	@Failure		404		{object}	response.APIResponse	"Product not found"
//	@Failure		409		{object}	response.APIResponse	"Already reviewed"
//	@Security		BearerAuth
//	@Router			/reviews [post]
func (h *ReviewHandler) AddReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req models.CreateReviewRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		review, err := h.reviewService.AddReview(r.Context(), claims.UserID, &req)
		if err != nil {
			logger.Warn("Failed to add review", slog.String("productId", req.ProductID.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Review added", slog.String("reviewId", review.ID.String()))
		response.Success(w, http.StatusCreated, review)
	}
}

// ListProductReviews godoc
//
//	@Summary		List a product's reviews
//	@Tags			Reviews
//	@Produce		json
//	@Param			id	path		string	true	"Product ID"	Format(uuid)
//	@Success		200	{object}	response.APIResponse{data=[]models.Review}
//	@Failure		400	{object}	response.APIResponse	"Invalid product ID"
//	@Failure		404	{object}	response.APIResponse	"Product not found"
//	@Router			/products/{id}/reviews [get]
func (h *ReviewHandler) ListProductReviews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		productID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		reviews, err := h.reviewService.ListProductReviews(r.Context(), productID)
		if err != nil {
			logger.Warn("Failed to list reviews", slog.String("productId", productID.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, reviews)
	}
}

// UpdateReview godoc
//
//	@Summary		Edit your review
//	@Tags			Reviews
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Review ID"	Format(uuid)
//	@Param			review	body		models.UpdateReviewRequest	true	"Fields to change"
//	@Success		200		{object}	response.APIResponse{data=models.Review}
//	@Failure		400		{object}	response.APIResponse	"Validation error"
//	@Failure		403		{object}	response.APIResponse	"Not your review"
//	@Failure		404		{object}	response.APIResponse	"Review not found"
//	@Security		BearerAuth
//	@Router			/reviews/{id} [put]
func (h *ReviewHandler) UpdateReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := requireClaims(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateReviewRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		review, err := h.reviewService.UpdateReview(r.Context(), claims.Actor(), id, &req)
		if err != nil {
			logger.Warn("Failed to update review", slog.String("reviewId", id.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, review)
	}
}

// DeleteReview godoc
//
//	@Summary		Delete a review
//	@Tags			Reviews
//	@Param			id	path	string	true	"Review ID"	Format(uuid)
//	@Success		204
//	@Failure		403	{object}	response.APIResponse	"Not your review"
//	@Failure		404	{object}	response.APIResponse	"Review not found"
//	@Security		BearerAuth
//	@Router			/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := requireClaims(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.reviewService.DeleteReview(r.Context(), claims.Actor(), id); err != nil {
			logger.Warn("Failed to delete review", slog.String("reviewId", id.String()), slog.Any("error", err))
			response.Error(w, err)

			return
		}

		logger.Info("Review deleted", slog.String("reviewId", id.String()))
		w.WriteHeader(http.StatusNoContent)
	}
}
