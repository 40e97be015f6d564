package utils_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appErrors "github.com/aaravmahajanofficial/buyzaar/internal/errors"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	"github.com/aaravmahajanofficial/buyzaar/internal/utils"
	"github.com/aaravmahajanofficial/buyzaar/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndValidate(t *testing.T) {
	validate := validator.New()

	t.Run("Valid body", func(t *testing.T) {
		// Arrange
		body := `{"product_id":"` + uuid.NewString() + `","quantity":2}`
		req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(body))
		rr := httptest.NewRecorder()

		var dest models.AddCartItemRequest

		// Act
		ok := utils.ParseAndValidate(req, rr, &dest, validate)

		// Assert
		assert.True(t, ok)
		assert.Equal(t, 2, dest.Quantity)
	})

	t.Run("Empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(""))
		rr := httptest.NewRecorder()

		var dest models.AddCartItemRequest

		ok := utils.ParseAndValidate(req, rr, &dest, validate)

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Shipping address missing required field", func(t *testing.T) {
		// Arrange
		body := `{"payment_method":"cod","shipping_address":{"full_name":"A","phone":"1","house_no":"2","area":"x","city":"y","state":"z","country":"IN"}}`
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
		rr := httptest.NewRecorder()

		var dest models.PlaceOrderRequest

		// Act
		ok := utils.ParseAndValidate(req, rr, &dest, validate)

		// Assert
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var resp response.APIResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, appErrors.ErrCodeValidation, resp.Error.Code)
		assert.Contains(t, resp.Error.Details, "Field PostalCode is required")
	})

	t.Run("Unknown payment method", func(t *testing.T) {
		body := `{"payment_method":"barter","shipping_address":{"full_name":"A","phone":"1","house_no":"2","area":"x","city":"y","state":"z","postal_code":"1","country":"IN"}}`
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
		rr := httptest.NewRecorder()

		var dest models.PlaceOrderRequest

		assert.False(t, utils.ParseAndValidate(req, rr, &dest, validate))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestParseID(t *testing.T) {
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/orders/"+id.String(), nil)
	req.SetPathValue("id", id.String())

	got, err := utils.ParseID(req, "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	req.SetPathValue("id", "not-a-uuid")
	_, err = utils.ParseID(req, "id")

	appErr, ok := appErrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}

func TestParsePagination(t *testing.T) {
	page, size := utils.ParsePagination(httptest.NewRequest(http.MethodGet, "/orders?page=3&pageSize=20", nil))
	assert.Equal(t, 3, page)
	assert.Equal(t, 20, size)

	page, size = utils.ParsePagination(httptest.NewRequest(http.MethodGet, "/orders?page=-1&pageSize=1000", nil))
	assert.Equal(t, 1, page)
	assert.Equal(t, utils.DefaultPageSize, size)
}
