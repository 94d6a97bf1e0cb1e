package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/biblioteca/library-system/internal/core/domain"
)

// ActorKey is the echo context key holding the authenticated domain.Actor.
const ActorKey = "actor"

// ActorResolver reloads the identity behind a token subject.
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID int64) (domain.Actor, error)
}

// Auth validates the JWT, reloads the user it names and injects the actor
// into context. The role comes from the stored user, not from the token.
func Auth(jwtSecret string, resolver ActorResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			sub, err := claims.GetSubject()
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			userID, err := strconv.ParseInt(sub, 10, 64)
			if err != nil || userID <= 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}

			actor, err := resolver.ResolveActor(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "account no longer active")
				}
				return err
			}

			c.Set(ActorKey, actor)
			c.Set("username", actor.Username)
			c.Set("role", string(actor.Role))

			return next(c)
		}
	}
}
