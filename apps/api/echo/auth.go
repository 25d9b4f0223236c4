package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/record"
	"github.com/trezcool/elimu/core/user"
)

const (
	tokenContextKey = "accountToken"
	authCookieName  = "accessToken"
)

// Claims represents the authorization claims transmitted via a JWT.
// Role and SchoolID are the only authorization inputs the handlers trust;
// nothing in a request body can override them.
type Claims struct {
	jwt.StandardClaims
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	SchoolID int    `json:"school_id,omitempty"`
}

// AccountID returns the token subject as the account's row id.
func (c Claims) AccountID() int {
	id, _ := strconv.Atoi(c.Subject)
	return id
}

func (c Claims) isAdmin() bool {
	return c.Role == user.RoleAdmin || c.Role == user.RoleSuperAdmin
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

// GetAccountClaims builds the claims embedded in an account's token.
func GetAccountClaims(conf *core.Config, usr record.Row, table record.Table) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(usr.Int("id")),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: usr.String("username"),
		Email:    usr.String("email"),
		Role:     user.RoleOf(usr, table),
		SchoolID: usr.Int("school_id"),
	}
}

// GenerateToken generates a signed JWT token string representing the account Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// requireSchool rejects callers whose token carries no school scope.
// Only the superadmin paths that explicitly allow it bypass this.
func requireSchool(claims Claims) (int, error) {
	if claims.SchoolID <= 0 {
		return 0, errHttpForbidden
	}
	return claims.SchoolID, nil
}

// setAuthCookie delivers the token as an http-only cookie alongside the
// JSON body so both browser and API clients can use it.
func setAuthCookie(ctx echo.Context, conf *core.Config, token string, expires time.Time) {
	ctx.SetCookie(&http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   !conf.Debug,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearAuthCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}
