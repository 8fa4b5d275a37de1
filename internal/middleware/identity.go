package middleware

// identity.go defines helpers shared across middleware files and handlers.
// The only identity in this service is the browser profile established by
// the Profile middleware; there are no user accounts.

import (
    "github.com/labstack/echo/v4"
)

// profileKey is the echo context key holding the profile ID.
const profileKey = "profile_id"

// ProfileID returns the profile ID stored in context by Profile, or "anon"
// when the middleware did not run.
func ProfileID(c echo.Context) string {
    if v, ok := c.Get(profileKey).(string); ok && v != "" {
        return v
    }
    return "anon"
}
