package apperrors

import "net/http"

// AppError is a request-scoped, recoverable error that maps onto one HTTP
// status and one machine-readable code. Handlers return these values and the
// echo error handler renders them; anything else becomes a generic 500.
type AppError struct {
	Status     int    `json:"-"`
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	Resolution string `json:"resolution,omitempty"`
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidToken = &AppError{
		Status:     http.StatusUnauthorized,
		Code:       "invalid_token",
		Message:    "Invalid token or revoked",
		Resolution: "Get a new token or renew it",
	}

	ErrAccessTokenRequired = &AppError{
		Status:     http.StatusUnauthorized,
		Code:       "access_token_required",
		Message:    "Valid access token is required",
		Resolution: "Please provide a valid access token",
	}

	ErrRefreshTokenRequired = &AppError{
		Status:     http.StatusForbidden,
		Code:       "refresh_token_required",
		Message:    "Valid refresh token is required",
		Resolution: "Please provide a valid refresh token",
	}

	ErrInsufficientPermission = &AppError{
		Status:  http.StatusUnauthorized,
		Code:    "insufficient_permission",
		Message: "You do not have sufficient permissions to perform this action",
	}

	ErrAccountNotVerified = &AppError{
		Status:     http.StatusForbidden,
		Code:       "account_not_verified",
		Message:    "Account not verified",
		Resolution: "Please check your email to verify your account first",
	}

	ErrUserAlreadyExists = &AppError{
		Status:  http.StatusForbidden,
		Code:    "user_exists",
		Message: "User with email already exists",
	}

	ErrUserNotFound = &AppError{
		Status:  http.StatusNotFound,
		Code:    "user_not_found",
		Message: "User not found",
	}

	ErrInvalidCredentials = &AppError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_email_or_password",
		Message: "Invalid email or password",
	}

	ErrPasswordNotMatched = &AppError{
		Status:     http.StatusBadRequest,
		Code:       "password_not_matched",
		Message:    "Passwords do not match",
		Resolution: "Please enter the same password twice",
	}

	ErrBookNotFound = &AppError{
		Status:  http.StatusNotFound,
		Code:    "book_not_found",
		Message: "Book not found",
	}

	ErrReviewNotFound = &AppError{
		Status:  http.StatusNotFound,
		Code:    "review_not_found",
		Message: "Review not found",
	}

	ErrTagNotFound = &AppError{
		Status:  http.StatusNotFound,
		Code:    "tag_not_found",
		Message: "Tag not found",
	}

	ErrTagAlreadyExists = &AppError{
		Status:  http.StatusForbidden,
		Code:    "tag_already_exists",
		Message: "Tag already exists",
	}
)
