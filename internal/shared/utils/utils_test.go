package utils

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastyaana/tiffin/internal/domain/delivery"
	"github.com/tastyaana/tiffin/internal/domain/subscription"
	"github.com/tastyaana/tiffin/internal/shared/errors"
)

func testContext(query string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return c, w
}

func TestTranslateDomainError(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantType errors.ErrorType
		wantCode int
	}{
		{"subscription not found", subscription.ErrSubscriptionNotFound, errors.ErrorTypeNotFound, http.StatusNotFound},
		{"plan not found", fmt.Errorf("lookup: %w", subscription.ErrPlanNotFound), errors.ErrorTypeNotFound, http.StatusNotFound},
		{"tracking record not found", delivery.ErrTrackingRecordNotFound, errors.ErrorTypeNotFound, http.StatusNotFound},
		{"bad status transition", subscription.ErrInvalidStatusTransition, errors.ErrorTypeConflict, http.StatusConflict},
		{"inactive subscription", subscription.ErrSubscriptionNotActive, errors.ErrorTypeConflict, http.StatusConflict},
		{"bad start state", subscription.ErrInvalidStartState, errors.ErrorTypeValidation, http.StatusBadRequest},
		{"driver required", delivery.ErrDriverRequired, errors.ErrorTypeValidation, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			appErr := errors.GetAppError(translateDomainError(tc.err))
			require.NotNil(t, appErr)
			assert.Equal(t, tc.wantType, appErr.Type)
			assert.Equal(t, tc.wantCode, appErr.Code)
		})
	}

	t.Run("app errors pass through untouched", func(t *testing.T) {
		orig := errors.NewValidationError("bad input")
		assert.Same(t, orig, errors.GetAppError(translateDomainError(orig)))
	})

	t.Run("unknown errors stay opaque", func(t *testing.T) {
		err := fmt.Errorf("connection reset")
		assert.Nil(t, errors.GetAppError(translateDomainError(err)))
	})
}

func TestErrorResponseWithError_HidesInternalDetails(t *testing.T) {
	c, w := testContext("")

	ErrorResponseWithError(c, fmt.Errorf("dial tcp 10.0.0.5:3306: timeout"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.Contains(t, w.Body.String(), "Internal server error occurred")
}

func TestParsePagination(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, _ := testContext("")
		page, pageSize := ParsePagination(c)
		assert.Equal(t, 1, page)
		assert.Equal(t, 20, pageSize)
	})

	t.Run("explicit values", func(t *testing.T) {
		c, _ := testContext("page=3&page_size=50")
		page, pageSize := ParsePagination(c)
		assert.Equal(t, 3, page)
		assert.Equal(t, 50, pageSize)
	})

	t.Run("clamps oversized and negative values", func(t *testing.T) {
		c, _ := testContext("page=-2&page_size=9999")
		page, pageSize := ParsePagination(c)
		assert.Equal(t, 1, page)
		assert.Equal(t, 100, pageSize)
	})
}

func TestParseOptionalQueries(t *testing.T) {
	t.Run("absent values stay nil", func(t *testing.T) {
		c, _ := testContext("")

		u, err := ParseOptionalUintQuery(c, "user_id")
		require.NoError(t, err)
		assert.Nil(t, u)

		d, err := ParseOptionalDecimalQuery(c, "price_min")
		require.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("present values parse", func(t *testing.T) {
		c, _ := testContext("user_id=42&price_min=99.50")

		u, err := ParseOptionalUintQuery(c, "user_id")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, uint(42), *u)

		d, err := ParseOptionalDecimalQuery(c, "price_min")
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Equal(t, "99.5", d.String())
	})

	t.Run("garbage rejected", func(t *testing.T) {
		c, _ := testContext("user_id=abc")
		_, err := ParseOptionalUintQuery(c, "user_id")
		assert.Error(t, err)
	})
}

func TestValidateStruct(t *testing.T) {
	type payload struct {
		Date  string `json:"date" validate:"required,civildate"`
		Shift string `json:"shift" validate:"required,oneof=morning evening"`
	}

	t.Run("valid payload", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(payload{Date: "2025-01-15", Shift: "morning"}))
	})

	t.Run("bad date surfaces json field name", func(t *testing.T) {
		err := ValidateStruct(payload{Date: "15/01/2025", Shift: "evening"})
		require.Error(t, err)
		appErr := errors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
		assert.Contains(t, appErr.Details, "date")
	})

	t.Run("missing shift", func(t *testing.T) {
		err := ValidateStruct(payload{Date: "2025-01-15"})
		require.Error(t, err)
	})
}
