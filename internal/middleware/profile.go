package middleware

import (
    "net/http"
    "time"

    "github.com/gorilla/securecookie"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/picklepass/internal/logger"
    "github.com/iliyamo/picklepass/internal/utils"
)

// ProfileCookie is the cookie that carries the signed profile ID.
const ProfileCookie = "pp_profile"

const profileMaxAge = 365 * 24 * time.Hour

// Profile gives every browser a stable profile ID.  The ID lives in a
// securecookie-signed cookie (encrypted too when blockKey is set); a missing
// or tampered cookie gets a fresh ID.  Bookings and bookmarks are stored per
// profile, so one profile plays the role of one browser's local storage.
func Profile(hashKey, blockKey []byte) echo.MiddlewareFunc {
    if len(blockKey) == 0 {
        blockKey = nil
    }
    sc := securecookie.New(hashKey, blockKey)
    sc.MaxAge(int(profileMaxAge.Seconds()))

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id, ok := readProfile(sc, c.Request())
            if !ok {
                fresh, err := utils.NewProfileID()
                if err != nil {
                    logger.Error("Middleware:Profile:Generate", "error", err)
                    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
                }
                id = fresh
                encoded, err := sc.Encode(ProfileCookie, id)
                if err != nil {
                    logger.Error("Middleware:Profile:Encode", "error", err)
                    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
                }
                c.SetCookie(&http.Cookie{
                    Name:     ProfileCookie,
                    Value:    encoded,
                    Path:     "/",
                    HttpOnly: true,
                    SameSite: http.SameSiteLaxMode,
                    Secure:   c.Request().TLS != nil,
                    MaxAge:   int(profileMaxAge.Seconds()),
                })
            }
            c.Set(profileKey, id)
            return next(c)
        }
    }
}

func readProfile(sc *securecookie.SecureCookie, r *http.Request) (string, bool) {
    ck, err := r.Cookie(ProfileCookie)
    if err != nil {
        return "", false
    }
    var id string
    if err := sc.Decode(ProfileCookie, ck.Value, &id); err != nil {
        return "", false
    }
    return id, utils.ValidProfileID(id)
}
