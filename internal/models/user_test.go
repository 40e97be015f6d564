package models_test

import (
	"testing"

	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestActorAccess(t *testing.T) {
	owner := uuid.New()

	assert.True(t, models.Actor{UserID: owner, Role: models.RoleUser}.CanAccess(owner))
	assert.False(t, models.Actor{UserID: uuid.New(), Role: models.RoleUser}.CanAccess(owner))
	assert.True(t, models.Actor{UserID: uuid.New(), Role: models.RoleAdmin}.CanAccess(owner))
}
