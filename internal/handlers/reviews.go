package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bookshelf-api/bookshelf/internal/apperrors"
	mwauth "github.com/bookshelf-api/bookshelf/internal/middleware/auth"
	"github.com/bookshelf-api/bookshelf/internal/models"
	"github.com/bookshelf-api/bookshelf/internal/service"
)

type ReviewHandler struct {
	Reviews *service.ReviewService
	Books   *service.BookService
}

func (h *ReviewHandler) CreateReview(c echo.Context) error {
	bookID, err := uuid.Parse(c.Param("book_id"))
	if err != nil {
		return apperrors.ErrBookNotFound
	}

	user := mwauth.CurrentUser(c)
	if user == nil {
		return apperrors.ErrInvalidToken
	}

	var req struct {
		Rating     int    `json:"rating"`
		ReviewText string `json:"review_text"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}

	ctx := c.Request().Context()
	book, err := h.Books.GetByID(ctx, bookID)
	if err != nil {
		return err
	}
	if book == nil {
		return apperrors.ErrBookNotFound
	}

	review := models.Review{
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
		UserID:     user.ID,
		BookID:     book.ID,
	}
	if err := h.Reviews.Create(ctx, &review); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) GetBookReviews(c echo.Context) error {
	bookID, err := uuid.Parse(c.Param("book_id"))
	if err != nil {
		return apperrors.ErrBookNotFound
	}

	items, err := h.Reviews.ListByBook(c.Request().Context(), bookID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

// DeleteReview lets a review's author or an admin remove it.
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ErrReviewNotFound
	}

	user := mwauth.CurrentUser(c)
	if user == nil {
		return apperrors.ErrInvalidToken
	}

	ctx := c.Request().Context()
	review, err := h.Reviews.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if review == nil {
		return apperrors.ErrReviewNotFound
	}

	if user.Role != models.RoleAdmin && review.UserID != user.ID {
		return apperrors.ErrInsufficientPermission
	}

	if err := h.Reviews.Delete(ctx, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
