package jwtx

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	jwtutil "github.com/maheshVishwakarma1998/Car-Bazar-Dapp-201/util/jwt"
)

// PrincipalKey is the context key holding the authenticated caller.
const PrincipalKey = "principal"

// PrincipalFromContext reads the sub claim of the token parsed by the JWT middleware.
func PrincipalFromContext(c echo.Context) (string, error) {
	claims, ok := c.Get("user").(map[string]any)
	if !ok || claims == nil {
		return "", errors.New("no jwt claims in context")
	}
	return jwtutil.Subject(claims)
}

// RequirePrincipal stores the caller principal under PrincipalKey or rejects the request.
func RequirePrincipal(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := PrincipalFromContext(c)
		if err != nil {
			c.Logger().Warnf("[AUTH] %v req_id=%s ip=%s", err, c.Response().Header().Get(echo.HeaderXRequestID), c.RealIP())
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		c.Set(PrincipalKey, p)
		return next(c)
	}
}

// Principal returns the caller set by RequirePrincipal, or "".
func Principal(c echo.Context) string {
	p, _ := c.Get(PrincipalKey).(string)
	return p
}
