package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/bookshelf-api/bookshelf/internal/handlers"
	mwauth "github.com/bookshelf-api/bookshelf/internal/middleware/auth"
	"github.com/bookshelf-api/bookshelf/internal/models"
	"github.com/bookshelf-api/bookshelf/internal/service"
)

type Deps struct {
	Guard         *mwauth.Guard
	Users         *service.UserService
	AuthHandler   *handlers.AuthHandler
	BookHandler   *handlers.BookHandler
	ReviewHandler *handlers.ReviewHandler
	TagHandler    *handlers.TagHandler
	SearchHandler *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	roleGate := mwauth.RequireRoles(d.Users, models.RoleAdmin, models.RoleUser)

	auth := v1.Group("/auth")
	auth.POST("/signup", d.AuthHandler.Signup)
	auth.GET("/verify/:token", d.AuthHandler.Verify)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/refresh_token", d.AuthHandler.Refresh, d.Guard.RequireRefresh)
	auth.GET("/logout", d.AuthHandler.Logout, d.Guard.RequireAccess)
	auth.GET("/me", d.AuthHandler.Me, d.Guard.RequireAccess, roleGate)
	auth.POST("/password-reset-request", d.AuthHandler.PasswordResetRequest)
	auth.POST("/password-reset-confirm/:token", d.AuthHandler.PasswordResetConfirm)
	auth.POST("/send_mail", d.AuthHandler.SendMail)
	auth.DELETE("/me", d.AuthHandler.DeleteMe, d.Guard.RequireAccess)

	books := v1.Group("/books", d.Guard.RequireAccess, roleGate)
	books.GET("", d.BookHandler.GetBooks)
	books.POST("", d.BookHandler.CreateBook)
	books.GET("/:id", d.BookHandler.GetBook)
	books.PATCH("/:id", d.BookHandler.PatchBook)
	books.DELETE("/:id", d.BookHandler.DeleteBook)
	books.GET("/user/:user_id", d.BookHandler.GetUserBooks)

	reviews := v1.Group("/reviews", d.Guard.RequireAccess, roleGate)
	reviews.POST("/book/:book_id", d.ReviewHandler.CreateReview)
	reviews.GET("/book/:book_id", d.ReviewHandler.GetBookReviews)
	reviews.DELETE("/:id", d.ReviewHandler.DeleteReview)

	tags := v1.Group("/tags", d.Guard.RequireAccess, roleGate)
	tags.GET("", d.TagHandler.GetTags)
	tags.POST("/book/:book_id", d.TagHandler.AddTagsToBook)
	tags.DELETE("/:id", d.TagHandler.DeleteTag)

	v1.GET("/search", d.SearchHandler.Handler)
}
