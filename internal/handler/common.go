package handler // handler contains the HTTP handlers for the booking API

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to Echo's Validator interface.
// Register it on the Echo instance so handlers can call c.Validate.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds the request validator with struct-tag rules.
func NewValidator() *Validator {
	return &Validator{v: validator.New()}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i any) error {
	return cv.v.Struct(i)
}

// getUserID extracts the authenticated user's ID from the context. JWTAuth
// stores it as int64; other types are tolerated for robustness.
func getUserID(c echo.Context) (int64, error) {
	switch t := c.Get("user_id").(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case float64:
		return int64(t), nil
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
