package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
)

// newAuthMiddleware authenticates requests via the Authorization header or
// the auth cookie. The cookie is promoted into the header before the JWT
// middleware runs so both transports share one verification path.
func newAuthMiddleware(conf *core.Config) echo.MiddlewareFunc {
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))
	promote := cookieToHeaderMiddleware()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return promote(jwt(next))
	}
}

// cookieToHeaderMiddleware copies the auth cookie into the Authorization
// header when the header is absent.
func cookieToHeaderMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			req := ctx.Request()
			if req.Header.Get(echo.HeaderAuthorization) == "" {
				if cookie, err := req.Cookie(authCookieName); err == nil && cookie.Value != "" {
					req.Header.Set(echo.HeaderAuthorization, "Bearer "+cookie.Value)
				}
			}
			return next(ctx)
		}
	}
}

// adminMiddleware gates a route to the admin roles. Tenancy itself is not
// checked here; handlers scope every store call by the claims' school.
func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.isAdmin() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
