package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// anonymous is the identity used for requests without verified claims.
const anonymous = "anon"

// userID returns the authenticated subject as a string, or "anon" when the
// request has not passed RequireAuth.
func userID(c echo.Context) string {
	if sub, ok := c.Get(ContextKeyUserID).(uint64); ok && sub != 0 {
		return strconv.FormatUint(sub, 10)
	}
	return anonymous
}
