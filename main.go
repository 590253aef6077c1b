package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"trivia-service/internal/config"
	"trivia-service/internal/db"
	"trivia-service/internal/event"
	"trivia-service/internal/handlers"
	"trivia-service/internal/identity"
	"trivia-service/internal/logger"
	"trivia-service/internal/repository"
	"trivia-service/internal/service"
	"trivia-service/internal/session"
	"trivia-service/internal/trivia"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := db.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", "driver", cfg.StoreDriver, "error", err)
	}
	defer closeStore()

	// RabbitMQ event publisher
	var publisher event.Publisher = event.NewLogPublisher(log)
	if cfg.EventsEnabled() {
		amqpPublisher, err := event.NewEventPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", "error", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	} else {
		log.Info("RabbitMQ not configured, events will only be logged")
	}

	source := trivia.New(log, trivia.Config{
		BaseURL:     cfg.TriviaBaseURL,
		Timeout:     cfg.HTTPTimeout,
		CategoryTTL: cfg.CategoryCacheTTL,
	})

	holder := identity.NewHolder(repository.NewIdentityRepository(store), log,
		identity.WithPublisher(publisher))
	machine := session.NewMachine(repository.NewSessionRepository(store), log,
		session.WithPublisher(publisher),
		session.WithTickInterval(cfg.TickInterval))
	defer machine.Close()

	quizService := service.NewQuizService(holder, machine, source, log, cfg.ClearSessionOnLogout)

	// Restore the last identity and warm the category cache side by side.
	// Neither failure stops the server.
	var g errgroup.Group
	g.Go(func() error {
		return holder.RestoreOnStartup(ctx)
	})
	g.Go(func() error {
		if _, degraded := quizService.Categories(ctx); degraded {
			log.Warn("Category directory unavailable at startup")
		}
		return nil
	})
	go func() {
		if err := g.Wait(); err != nil {
			log.Error("Startup restore finished with errors", "error", err)
		}
	}()

	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	handlers.SetupRoutes(r, quizService, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Quiz service listening", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	// Close the machine first so open event streams end and Shutdown does
	// not wait on them.
	machine.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
}
