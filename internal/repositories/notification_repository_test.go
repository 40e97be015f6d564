package repository_test

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	repository "github.com/aaravmahajanofficial/buyzaar/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_CreateNotification(t *testing.T) {
	// Arrange
	db, mock := newMockDB(t)
	repo := repository.NewNotificationRepo(db)
	now := time.Now()
	notification := &models.Notification{
		ID:        uuid.New(),
		Type:      models.NotificationTypeEmail,
		Recipient: "buyer@example.com",
		Subject:   "Order confirmed",
		Content:   "Thanks",
		Status:    models.NotificationStatusPending,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO notifications")).
		WithArgs(notification.ID, notification.Type, notification.Recipient, notification.Subject,
			notification.Content, notification.Status).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	// Act
	err := repo.CreateNotification(t.Context(), notification)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, now, notification.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_UpdateNotificationStatus(t *testing.T) {
	id := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		db, mock := newMockDB(t)
		repo := repository.NewNotificationRepo(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET status = $1, error_message = $2")).
			WithArgs(models.NotificationStatusFailed, "status code: 401", id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act
		err := repo.UpdateNotificationStatus(t.Context(), id, models.NotificationStatusFailed, "status code: 401")

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No such notification", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := repository.NewNotificationRepo(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications")).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateNotificationStatus(t.Context(), id, models.NotificationStatusSent, "")

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}
