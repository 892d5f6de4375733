package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core/admin"
)

// adminMiddleware gates write endpoints on an active admin account.
func adminMiddleware(svc admin.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			adm, err := getContextAdmin(ctx, svc)
			if err != nil {
				if errors.Cause(err) == admin.ErrNotFound {
					return errHttpForbidden
				}
				return errors.Wrap(err, "getting context admin")
			}
			if adm.IsActive != nil && !*adm.IsActive {
				return errAccountDeactivated
			}
			return next(ctx)
		}
	}
}
