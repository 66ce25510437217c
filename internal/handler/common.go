package handler // handler defines http handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// getEmployeeID extracts the authenticated employee's ID from the
// context.  JWT numeric claims decode as float64, so a few shapes are
// tolerated.
func getEmployeeID(c echo.Context) (uint64, error) {
	return contextUint(c, "employee_id")
}

// getCompanyID extracts the company scope the token was issued for.
func getCompanyID(c echo.Context) (uint64, error) {
	return contextUint(c, "company_id")
}

func contextUint(c echo.Context, key string) (uint64, error) {
	switch t := c.Get(key).(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid " + key + " in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
