package controller

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rebk-studio/ms-go-studio/app/entity"
	"github.com/rebk-studio/ms-go-studio/app/factory"
)

const staffUserContextKey = "staff-user"

type userFinder interface {
	FindByID(ctx context.Context, id uint64) (*entity.User, error)
}

// StaffGate admits only authenticated staff users, identified by the
// X-User-ID header the fronting auth proxy sets. Everyone else is redirected
// to the permission-denied page.
func StaffGate(users userFinder, deniedURL string) echo.MiddlewareFunc {
	logger := factory.NewModuleLogger("staff-gate")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			raw := strings.TrimSpace(ctx.Request().Header.Get("X-User-ID"))
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				return ctx.Redirect(http.StatusFound, deniedURL)
			}

			user, err := users.FindByID(ctx.Request().Context(), id)
			if err != nil {
				logger.WithError(err).WithField("user_id", id).Error("staff lookup failed")
				return ctx.Redirect(http.StatusFound, deniedURL)
			}
			if user == nil || !user.IsStaff {
				return ctx.Redirect(http.StatusFound, deniedURL)
			}

			ctx.Set(staffUserContextKey, user)
			return next(ctx)
		}
	}
}

func staffUser(ctx echo.Context) *entity.User {
	user, _ := ctx.Get(staffUserContextKey).(*entity.User)
	return user
}
