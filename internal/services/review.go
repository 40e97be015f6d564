package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/aaravmahajanofficial/buyzaar/internal/api/middleware"
	"github.com/aaravmahajanofficial/buyzaar/internal/cache"
	appErrors "github.com/aaravmahajanofficial/buyzaar/internal/errors"
	"github.com/aaravmahajanofficial/buyzaar/internal/metrics"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	repository "github.com/aaravmahajanofficial/buyzaar/internal/repositories"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type ReviewService interface {
	// AddReview requires a prior purchase of the product and recalculates the
	// product's rating aggregates in the same transaction as the insert.
	AddReview(ctx context.Context, userID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error)
	ListProductReviews(ctx context.Context, productID uuid.UUID) ([]*models.Review, error)
	UpdateReview(ctx context.Context, actor models.Actor, id uuid.UUID, req *models.UpdateReviewRequest) (*models.Review, error)
	DeleteReview(ctx context.Context, actor models.Actor, id uuid.UUID) error
}

type reviewService struct {
	uow         repository.UnitOfWork
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	cache       cache.Cache
	sanitizer   *bluemonday.Policy
}

func NewReviewService(uow repository.UnitOfWork, reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository, cache cache.Cache,
) ReviewService {
	return &reviewService{
		uow:         uow,
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		cache:       cache,
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

func (s *reviewService) AddReview(ctx context.Context, userID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, appErrors.ValidationError("Rating must be between 1 and 5")
	}

	if _, err := s.productRepo.GetProductByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	purchased, err := s.orderRepo.HasPurchased(ctx, userID, req.ProductID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to check purchase history").WithError(err)
	}

	if !purchased {
		return nil, appErrors.NotAuthorizedError("You can review only purchased products")
	}

	review := &models.Review{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   s.sanitize(req.Comment),
	}

	err = s.withRecalculation(ctx, "create", review.ProductID, func(repos repository.TxRepositories) error {
		if err := repos.Reviews.CreateReview(ctx, review); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return appErrors.DuplicateReviewError()
			}

			return appErrors.DatabaseError("Failed to create review").WithError(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

func (s *reviewService) ListProductReviews(ctx context.Context, productID uuid.UUID) ([]*models.Review, error) {
	reviews, err := s.reviewRepo.ListReviewsByProduct(ctx, productID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch reviews").WithError(err)
	}

	return reviews, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, actor models.Actor, id uuid.UUID, req *models.UpdateReviewRequest) (*models.Review, error) {
	review, err := s.getReview(ctx, id)
	if err != nil {
		return nil, err
	}

	if review.UserID != actor.UserID {
		return nil, appErrors.NotAuthorizedError("You can only edit your own review")
	}

	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			return nil, appErrors.ValidationError("Rating must be between 1 and 5")
		}

		review.Rating = *req.Rating
	}

	if req.Comment != nil {
		review.Comment = s.sanitize(*req.Comment)
	}

	err = s.withRecalculation(ctx, "update", review.ProductID, func(repos repository.TxRepositories) error {
		if err := repos.Reviews.UpdateReview(ctx, review); err != nil {
			return appErrors.DatabaseError("Failed to update review").WithError(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	review, err := s.getReview(ctx, id)
	if err != nil {
		return err
	}

	if !actor.CanAccess(review.UserID) {
		return appErrors.NotAuthorizedError("You can only delete your own review")
	}

	return s.withRecalculation(ctx, "delete", review.ProductID, func(repos repository.TxRepositories) error {
		if err := repos.Reviews.DeleteReview(ctx, review.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.NotFoundError("Review not found")
			}

			return appErrors.DatabaseError("Failed to delete review").WithError(err)
		}

		return nil
	})
}

// withRecalculation runs write and then rebuilds the product's rating
// aggregates from every remaining review, all in one transaction.
func (s *reviewService) withRecalculation(ctx context.Context, operation string, productID uuid.UUID, write func(repository.TxRepositories) error) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ReviewService.recalculateRating")
	defer span.End()

	span.SetAttributes(attribute.String("review.operation", operation), attribute.String("product.id", productID.String()))

	var summary models.RatingSummary

	err := s.uow.WithinTx(ctx, func(repos repository.TxRepositories) error {
		if err := write(repos); err != nil {
			return err
		}

		ratings, err := repos.Reviews.ListRatingsByProduct(ctx, productID)
		if err != nil {
			return appErrors.DatabaseError("Failed to load ratings").WithError(err)
		}

		summary = models.SummarizeRatings(ratings)

		if err := repos.Products.UpdateRating(ctx, productID, summary); err != nil {
			return appErrors.DatabaseError("Failed to update product rating").WithError(err)
		}

		return nil
	})
	if err != nil {
		if _, ok := appErrors.IsAppError(err); !ok {
			err = appErrors.DatabaseError("Failed to save review").WithError(err)
		}

		span.RecordError(err)

		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.ProductKey(productID)); err != nil {
			middleware.LoggerFromContext(ctx).Warn("Failed to invalidate product cache", slog.Any("error", err))
		}
	}

	metrics.ReviewWritten(operation)
	middleware.LoggerFromContext(ctx).Info("Product rating recalculated",
		slog.String("productId", productID.String()),
		slog.String("operation", operation),
		slog.Float64("averageRating", summary.Average),
		slog.Int("totalRatings", summary.Count))

	return nil
}

func (s *reviewService) getReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, err := s.reviewRepo.GetReviewByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Review not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch review").WithError(err)
	}

	return review, nil
}

func (s *reviewService) sanitize(comment string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(comment))
}
