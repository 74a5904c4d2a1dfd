package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// sessionPageMiddleware gates the server-rendered admin pages: no valid
// session cookie means a redirect to the login page, never a JSON 401.
func sessionPageMiddleware(loginURL string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			cookie, err := ctx.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				return ctx.Redirect(http.StatusFound, loginURL)
			}
			claims, err := parseSessionToken(cookie.Value)
			if err != nil {
				clearSessionCookie(ctx)
				return ctx.Redirect(http.StatusFound, loginURL)
			}
			ctx.Set(contextClaimsKey, *claims)
			return next(ctx)
		}
	}
}
