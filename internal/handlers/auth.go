package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bookshelf-api/bookshelf/internal/apperrors"
	"github.com/bookshelf-api/bookshelf/internal/hash"
	"github.com/bookshelf-api/bookshelf/internal/logging"
	mwauth "github.com/bookshelf-api/bookshelf/internal/middleware/auth"
	"github.com/bookshelf-api/bookshelf/internal/models"
	"github.com/bookshelf-api/bookshelf/internal/notify"
	"github.com/bookshelf-api/bookshelf/internal/service"
	"github.com/bookshelf-api/bookshelf/internal/token"
)

type AuthHandler struct {
	Users      *service.UserService
	Hasher     *hash.Hasher
	Codec      *token.Codec
	Links      *token.LinkCodec
	Blocklist  TokenRevoker
	Notifier   Notifier
	Publisher  Publisher
	Domain     string
	LinkMaxAge time.Duration
}

func (h *AuthHandler) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_signup")

	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	exists, err := h.Users.Exists(ctx, req.Email)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.ErrUserAlreadyExists
	}

	pwHash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		return err
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleUser,
		PasswordHash: pwHash,
	}
	if err := h.Users.Create(ctx, &user); err != nil {
		return err
	}

	linkToken, err := h.Links.Sign(map[string]string{"email": user.Email})
	if err != nil {
		l.Error("verification link sign failed", "error", err)
	} else {
		link := fmt.Sprintf("http://%s/api/v1/auth/verify/%s", h.Domain, linkToken)
		html := fmt.Sprintf(
			`<h1>Verify your email</h1><p>Please click the <a href="%s">link</a> to verify your email.</p>`,
			link,
		)
		notifyAsync(c, h.Notifier, []string{user.Email}, "Verify your Email", html)
	}

	publishEvent(c, h.Publisher, notify.TopicUserEvents, user.ID.String(), map[string]any{
		"type":     "user_registered",
		"user_uid": user.ID.String(),
		"email":    user.Email,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Account created, check your email to verify your account",
		"user":    user,
	})
}

func (h *AuthHandler) Verify(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_verify")

	data, err := h.Links.Unsign(c.Param("token"), h.LinkMaxAge)
	if err != nil {
		l.Warn("verification link rejected", "error", err)
		return apperrors.ErrInvalidToken
	}

	email := data["email"]
	if email == "" {
		return apperrors.ErrInvalidToken
	}

	user, err := h.Users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.ErrUserNotFound
	}

	if err := h.Users.MarkVerified(ctx, user); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Account verified successfully"})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if user == nil || !h.Hasher.Verify(req.Password, user.PasswordHash) {
		l.Warn("login failed", "email", req.Email)
		return apperrors.ErrInvalidCredentials
	}

	claims := token.UserClaims{Email: user.Email, UserID: user.ID.String()}
	accessToken, err := h.Codec.IssueAccess(claims)
	if err != nil {
		return err
	}
	refreshToken, err := h.Codec.IssueRefresh(claims)
	if err != nil {
		return err
	}

	publishEvent(c, h.Publisher, notify.TopicUserEvents, user.ID.String(), map[string]any{
		"type":     "user_logged_in",
		"user_uid": user.ID.String(),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message":       "Login successful",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          echo.Map{"email": user.Email, "user_uid": user.ID.String()},
	})
}

// Refresh runs behind the refresh-token guard and mints a new access token
// for the identity carried by the refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	claims := mwauth.ClaimsFrom(c)
	if claims == nil {
		return apperrors.ErrInvalidToken
	}

	accessToken, err := h.Codec.IssueAccess(claims.User)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"access_token": accessToken})
}

// Logout revokes the presented access token's jti. The blocklist entry
// outlives the token's remaining validity.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims := mwauth.ClaimsFrom(c)
	if claims == nil {
		return apperrors.ErrInvalidToken
	}

	if err := h.Blocklist.Revoke(c.Request().Context(), claims.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	user := mwauth.CurrentUser(c)
	if user == nil {
		return apperrors.ErrInvalidToken
	}
	return c.JSON(http.StatusOK, user)
}

// PasswordResetRequest always answers 200 so the endpoint cannot be used to
// probe which emails are registered.
func (h *AuthHandler) PasswordResetRequest(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_password_reset_request")

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	linkToken, err := h.Links.Sign(map[string]string{"email": req.Email})
	if err != nil {
		l.Error("reset link sign failed", "error", err)
	} else {
		link := fmt.Sprintf("http://%s/api/v1/auth/password-reset-confirm/%s", h.Domain, linkToken)
		html := fmt.Sprintf(
			`<h1>Reset Password</h1><p>Please click the <a href="%s">link</a> to reset your password.</p>`,
			link,
		)
		notifyAsync(c, h.Notifier, []string{req.Email}, "Password Reset Request", html)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Please check your email regarding password reset",
	})
}

func (h *AuthHandler) PasswordResetConfirm(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_password_reset_confirm")

	var req struct {
		NewPassword        string `json:"new_password"`
		ConfirmNewPassword string `json:"confirm_new_password"`
	}
	if err := c.Bind(&req); err != nil || req.NewPassword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.NewPassword != req.ConfirmNewPassword {
		return apperrors.ErrPasswordNotMatched
	}

	data, err := h.Links.Unsign(c.Param("token"), h.LinkMaxAge)
	if err != nil {
		l.Warn("reset link rejected", "error", err)
		return apperrors.ErrInvalidToken
	}

	user, err := h.Users.FindByEmail(ctx, data["email"])
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.ErrUserNotFound
	}

	pwHash, err := h.Hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := h.Users.SetPasswordHash(ctx, user, pwHash); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset successful"})
}

func (h *AuthHandler) SendMail(c echo.Context) error {
	var req struct {
		Addresses []string `json:"addresses"`
	}
	if err := c.Bind(&req); err != nil || len(req.Addresses) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	notifyAsync(c, h.Notifier, req.Addresses, "Welcome to our App", "<h1>Welcome to the app.</h1>")

	return c.JSON(http.StatusOK, echo.Map{"message": "Email sent successfully"})
}

func (h *AuthHandler) DeleteMe(c echo.Context) error {
	ctx := c.Request().Context()

	claims := mwauth.ClaimsFrom(c)
	if claims == nil {
		return apperrors.ErrInvalidToken
	}

	user, err := h.Users.FindByEmail(ctx, claims.User.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.ErrUserNotFound
	}

	if err := h.Users.DeleteByEmail(ctx, user.Email); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
