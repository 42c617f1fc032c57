package auth

import (
	"context"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/bookshelf-api/bookshelf/internal/apperrors"
	"github.com/bookshelf-api/bookshelf/internal/models"
)

const currentUserKey = "current_user"

// UserDirectory resolves the authenticated user behind a token.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// RequireRoles resolves the current user from the guarded claims and admits
// only verified accounts whose role is in the allow-list. The verification
// check runs before the role check. Must be registered after RequireAccess.
func RequireRoles(users UserDirectory, allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFrom(c)
			if claims == nil {
				return apperrors.ErrInvalidToken
			}

			user, err := users.FindByEmail(c.Request().Context(), claims.User.Email)
			if err != nil {
				return err
			}
			if user == nil {
				return apperrors.ErrUserNotFound
			}

			if !user.IsVerified {
				return apperrors.ErrAccountNotVerified
			}
			if !slices.Contains(allowed, user.Role) {
				return apperrors.ErrInsufficientPermission
			}

			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user a role gate stored on the context.
func CurrentUser(c echo.Context) *models.User {
	if user, ok := c.Get(currentUserKey).(*models.User); ok {
		return user
	}
	return nil
}
