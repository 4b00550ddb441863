package middleware

// identity.go holds the shared helper that resolves a stable identifier
// for the current request, used by the rate limiter to build per-user
// bucket keys. Unauthenticated requests all share the "anon" identity.

import (
    "fmt"

    "github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user id from the context as a
// string, or "anon" when the request carries no identity.
func currentUserID(c echo.Context) string {
    v := c.Get("user_id")
    if v == nil {
        return "anon"
    }
    switch t := v.(type) {
    case string:
        if t != "" {
            return t
        }
    case float64:
        return fmt.Sprintf("%.0f", t)
    case uint64:
        return fmt.Sprintf("%d", t)
    }
    return "anon"
}
