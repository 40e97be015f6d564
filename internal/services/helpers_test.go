package service_test

import (
	"context"
	"testing"

	appErrors "github.com/aaravmahajanofficial/buyzaar/internal/errors"
	repository "github.com/aaravmahajanofficial/buyzaar/internal/repositories"
	"github.com/aaravmahajanofficial/buyzaar/internal/repositories/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// txRepos hands the same repository mocks to every transaction the unit of
// work opens.
type txRepos struct {
	uow      *mocks.UnitOfWork
	carts    *mocks.CartRepository
	products *mocks.ProductRepository
	orders   *mocks.OrderRepository
	reviews  *mocks.ReviewRepository
}

func newTxRepos(t *testing.T) *txRepos {
	t.Helper()

	return &txRepos{
		uow:      mocks.NewUnitOfWork(t),
		carts:    mocks.NewCartRepository(t),
		products: mocks.NewProductRepository(t),
		orders:   mocks.NewOrderRepository(t),
		reviews:  mocks.NewReviewRepository(t),
	}
}

// expectTx makes WithinTx run fn against the mocks and return its error.
func (r *txRepos) expectTx() {
	r.uow.On("WithinTx", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, fn func(repository.TxRepositories) error) error {
			return fn(repository.TxRepositories{
				Carts:    r.carts,
				Products: r.products,
				Orders:   r.orders,
				Reviews:  r.reviews,
			})
		}).Once()
}

func requireAppError(t *testing.T, err error, code string) *appErrors.AppError {
	t.Helper()

	require.Error(t, err)

	appErr, ok := appErrors.IsAppError(err)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)

	return appErr
}
