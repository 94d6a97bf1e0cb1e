package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/biblioteca/library-system/internal/api/middleware"
	"github.com/biblioteca/library-system/internal/core/domain"
)

// ctxActor extracts the actor injected by the Auth middleware. A missing or
// zero actor means the route was mounted without Auth; reject with 401.
func ctxActor(c echo.Context) (domain.Actor, error) {
	actor, ok := c.Get(middleware.ActorKey).(domain.Actor)
	if !ok || actor.ID == 0 || actor.Role == "" {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return actor, nil
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// bindAndValidate decodes the request body into req and runs the registered
// validator when there is one.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	if err := c.Validate(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	return nil
}
