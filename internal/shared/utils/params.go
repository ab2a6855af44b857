package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tastyaana/tiffin/internal/shared/constants"
	"github.com/tastyaana/tiffin/internal/shared/errors"
)

// ParseUintQuery parses a required unsigned integer query parameter.
func ParseUintQuery(c *gin.Context, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, errors.NewValidationError(name + " is required")
	}
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errors.NewValidationError("invalid " + name)
	}
	return uint(val), nil
}

// ParseOptionalUintQuery parses an optional unsigned integer query parameter.
// Absence yields nil.
func ParseOptionalUintQuery(c *gin.Context, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, errors.NewValidationError("invalid " + name)
	}
	u := uint(val)
	return &u, nil
}

// ParseOptionalDecimalQuery parses an optional decimal query parameter.
// Absence yields nil.
func ParseOptionalDecimalQuery(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	val, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, errors.NewValidationError("invalid " + name)
	}
	return &val, nil
}

// ParseIntQueryDefault parses an optional integer query parameter with a
// fallback value.
func ParseIntQueryDefault(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return val
}

// ParsePagination reads page and page_size, clamped to sane bounds.
func ParsePagination(c *gin.Context) (page, pageSize int) {
	page = ParseIntQueryDefault(c, "page", constants.DefaultPage)
	if page < 1 {
		page = constants.DefaultPage
	}
	pageSize = ParseIntQueryDefault(c, "page_size", constants.DefaultPageSize)
	if pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}
	return page, pageSize
}

// DecimalFromFloat converts a JSON float price into a decimal.
func DecimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
