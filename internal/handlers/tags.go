package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bookshelf-api/bookshelf/internal/apperrors"
	"github.com/bookshelf-api/bookshelf/internal/service"
)

type TagHandler struct {
	Tags  *service.TagService
	Books *service.BookService
}

func (h *TagHandler) GetTags(c echo.Context) error {
	tags, err := h.Tags.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) AddTagsToBook(c echo.Context) error {
	bookID, err := uuid.Parse(c.Param("book_id"))
	if err != nil {
		return apperrors.ErrBookNotFound
	}

	var req struct {
		Tags []string `json:"tags"`
	}
	if err := c.Bind(&req); err != nil || len(req.Tags) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	book, err := h.Books.GetByID(ctx, bookID)
	if err != nil {
		return err
	}
	if book == nil {
		return apperrors.ErrBookNotFound
	}

	if err := h.Tags.AddToBook(ctx, book, req.Tags); err != nil {
		return err
	}

	updated, err := h.Books.GetByID(ctx, bookID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updated)
}

func (h *TagHandler) DeleteTag(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ErrTagNotFound
	}

	ctx := c.Request().Context()
	tag, err := h.Tags.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tag == nil {
		return apperrors.ErrTagNotFound
	}

	if err := h.Tags.Delete(ctx, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
