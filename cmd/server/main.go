package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/bookshelf-api/bookshelf/internal/apperrors"
	"github.com/bookshelf-api/bookshelf/internal/blocklist"
	"github.com/bookshelf-api/bookshelf/internal/config"
	"github.com/bookshelf-api/bookshelf/internal/es"
	"github.com/bookshelf-api/bookshelf/internal/handlers"
	"github.com/bookshelf-api/bookshelf/internal/hash"
	"github.com/bookshelf-api/bookshelf/internal/logging"
	mwauth "github.com/bookshelf-api/bookshelf/internal/middleware/auth"
	"github.com/bookshelf-api/bookshelf/internal/middleware/loggingmw"
	"github.com/bookshelf-api/bookshelf/internal/notify"
	"github.com/bookshelf-api/bookshelf/internal/search"
	"github.com/bookshelf-api/bookshelf/internal/service"
	"github.com/bookshelf-api/bookshelf/internal/token"
	httpserver "github.com/bookshelf-api/bookshelf/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(configuration.JWT_SECRET, "JWT_SECRET")

	logger := logging.New(os.Getenv("LOG_LEVEL"))

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	rdb, err := blocklist.NewClient(configuration.REDIS_ADDR, configuration.REDIS_PASSWORD, configuration.REDIS_DB)
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}
	revocations := blocklist.New(rdb, configuration.REFRESH_TOKEN_TTL)

	prod := notify.NewProducer([]string{configuration.KAFKA_ADDRESS})

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatalf("elasticsearch init error: %v", err)
	}
	searchSvc := search.NewService(esClient, "books")

	secret := []byte(configuration.JWT_SECRET)
	codec := token.NewCodec(secret, configuration.ACCESS_TOKEN_TTL, configuration.REFRESH_TOKEN_TTL)
	links := token.NewLinkCodec(secret, token.LinkSalt)
	hasher := hash.NewHasher(configuration.BCRYPT_COST)

	users := &service.UserService{DB: db}
	books := &service.BookService{DB: db}
	reviews := &service.ReviewService{DB: db}
	tags := &service.TagService{DB: db}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler(logger)

	deps := httpserver.Deps{
		Guard: &mwauth.Guard{Codec: codec, Blocklist: revocations},
		Users: users,
		AuthHandler: &handlers.AuthHandler{
			Users:      users,
			Hasher:     hasher,
			Codec:      codec,
			Links:      links,
			Blocklist:  revocations,
			Notifier:   prod,
			Publisher:  prod,
			Domain:     configuration.DOMAIN,
			LinkMaxAge: configuration.LINK_MAX_AGE,
		},
		BookHandler:   &handlers.BookHandler{Books: books, Publisher: prod, Indexer: searchSvc},
		ReviewHandler: &handlers.ReviewHandler{Reviews: reviews, Books: books},
		TagHandler:    &handlers.TagHandler{Tags: tags, Books: books},
		SearchHandler: &handlers.SearchHandler{Search: searchSvc},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := rdb.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
