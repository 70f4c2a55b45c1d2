package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edulink/backend/core"
	"github.com/edulink/backend/core/user"
)

var contextUserKey = "user"

// authMiddleware verifies the Bearer token against the identity service and
// resolves the profile record. A missing profile does not block the request:
// the session continues with a degraded user carrying identity data only.
func authMiddleware(idSvc core.IdentityService, usrSvc user.Service, logger core.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token, err := extractBearerToken(ctx)
			if err != nil {
				return err
			}

			ident, err := idSvc.VerifyToken(ctx.Request().Context(), token)
			if err != nil {
				return core.ErrInvalidToken
			}

			usr, err := usrSvc.GetByID(ctx.Request().Context(), ident.UID)
			if err != nil {
				if errors.Cause(err) != user.ErrNotFound {
					return errors.Wrap(err, "finding user by ID")
				}
				usr = user.User{UID: ident.UID, Email: ident.Email}
				logger.Warn("profile record missing; continuing with degraded session", usr)
			}

			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

func extractBearerToken(ctx echo.Context) (string, error) {
	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", errUnauthorized
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errUnauthorized
	}
	return parts[1], nil
}

func getContextUser(ctx echo.Context) (user.User, bool) {
	usr, ok := ctx.Get(contextUserKey).(user.User)
	return usr, ok
}

func requireContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := getContextUser(ctx); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}
