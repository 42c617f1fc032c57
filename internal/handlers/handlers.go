package handlers

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bookshelf-api/bookshelf/internal/logging"
	"github.com/bookshelf-api/bookshelf/internal/models"
)

// Notifier delivers email fire-and-forget; a publish failure never fails the
// originating request.
type Notifier interface {
	Send(ctx context.Context, recipients []string, subject, htmlBody string) error
}

// Publisher emits domain events to the message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// TokenRevoker is the write side of the revocation store.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string) error
}

// BookIndexer keeps the search index in step with the book store.
type BookIndexer interface {
	IndexBook(ctx context.Context, book models.Book) error
	DeleteBook(ctx context.Context, id string) error
}

// notifyAsync hands the email off to a goroutine with its own deadline so a
// slow broker cannot block the request.
func notifyAsync(c echo.Context, n Notifier, recipients []string, subject, htmlBody string) {
	if n == nil {
		return
	}
	l := logging.FromContext(c.Request().Context())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := n.Send(ctx, recipients, subject, htmlBody); err != nil {
			l.Error("email publish failed", "error", err)
		}
	}()
}

func publishEvent(c echo.Context, p Publisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("event publish failed", "topic", topic, "error", err)
	}
}
