package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bookshelf-api/bookshelf/internal/apperrors"
	"github.com/bookshelf-api/bookshelf/internal/logging"
	mwauth "github.com/bookshelf-api/bookshelf/internal/middleware/auth"
	"github.com/bookshelf-api/bookshelf/internal/models"
	"github.com/bookshelf-api/bookshelf/internal/notify"
	"github.com/bookshelf-api/bookshelf/internal/service"
	"github.com/bookshelf-api/bookshelf/internal/util"
)

type BookHandler struct {
	Books     *service.BookService
	Publisher Publisher
	Indexer   BookIndexer
}

func (h *BookHandler) index(c echo.Context, book models.Book) {
	if h.Indexer == nil {
		return
	}
	if err := h.Indexer.IndexBook(c.Request().Context(), book); err != nil {
		logging.FromContext(c.Request().Context()).Error("book index failed", "book_uid", book.ID, "error", err)
	}
}

func (h *BookHandler) GetBooks(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Books.List(c.Request().Context(), offset, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": echo.Map{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *BookHandler) GetBook(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ErrBookNotFound
	}

	book, err := h.Books.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if book == nil {
		return apperrors.ErrBookNotFound
	}

	return c.JSON(http.StatusOK, book)
}

func (h *BookHandler) GetUserBooks(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		return apperrors.ErrUserNotFound
	}

	items, err := h.Books.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

func (h *BookHandler) CreateBook(c echo.Context) error {
	claims := mwauth.ClaimsFrom(c)
	if claims == nil {
		return apperrors.ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.User.UserID)
	if err != nil {
		return apperrors.ErrInvalidToken
	}

	var req service.BookPatch
	if err := c.Bind(&req); err != nil || req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	book := models.Book{
		Title:         req.Title,
		Author:        req.Author,
		Publisher:     req.Publisher,
		PublishedDate: req.PublishedDate,
		PageCount:     req.PageCount,
		Language:      req.Language,
		UserID:        userID,
	}
	if err := h.Books.Create(c.Request().Context(), &book); err != nil {
		return err
	}

	publishEvent(c, h.Publisher, notify.TopicBookEvents, book.ID.String(), map[string]any{
		"type":     "book_created",
		"book_uid": book.ID.String(),
		"title":    book.Title,
	})
	h.index(c, book)

	return c.JSON(http.StatusCreated, book)
}

func (h *BookHandler) PatchBook(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ErrBookNotFound
	}

	var req service.BookPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	book, err := h.Books.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if book == nil {
		return apperrors.ErrBookNotFound
	}

	if err := h.Books.Update(ctx, book, req); err != nil {
		return err
	}

	publishEvent(c, h.Publisher, notify.TopicBookEvents, book.ID.String(), map[string]any{
		"type":     "book_updated",
		"book_uid": book.ID.String(),
		"title":    book.Title,
	})
	h.index(c, *book)

	return c.JSON(http.StatusOK, book)
}

func (h *BookHandler) DeleteBook(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ErrBookNotFound
	}

	ctx := c.Request().Context()
	book, err := h.Books.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if book == nil {
		return apperrors.ErrBookNotFound
	}

	if err := h.Books.Delete(ctx, id); err != nil {
		return err
	}

	publishEvent(c, h.Publisher, notify.TopicBookEvents, id.String(), map[string]any{
		"type":     "book_deleted",
		"book_uid": id.String(),
	})
	if h.Indexer != nil {
		if err := h.Indexer.DeleteBook(ctx, id.String()); err != nil {
			logging.FromContext(ctx).Error("book index delete failed", "book_uid", id, "error", err)
		}
	}

	return c.NoContent(http.StatusNoContent)
}
