package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/taskify-api/internal/config"
	"github.com/vasapolrittideah/taskify-api/internal/handler"
	"github.com/vasapolrittideah/taskify-api/internal/repository"
	"github.com/vasapolrittideah/taskify-api/internal/usecase"
	"github.com/vasapolrittideah/taskify-api/shared/auth"
	"github.com/vasapolrittideah/taskify-api/shared/mailer"
	"github.com/vasapolrittideah/taskify-api/shared/provider"
	"github.com/vasapolrittideah/taskify-api/shared/validation"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.New(&logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping MongoDB")
	}
	logger.Info().Msg("connected to MongoDB")

	db := client.Database(cfg.Mongo.Database)

	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	taskRepo := repository.NewTaskMongoRepository(db)

	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)
	mail := mailer.NewMailer(&logger)
	google := provider.NewGoogleOAuthProvider(cfg.Google.ClientID)

	validator, err := validation.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build validator")
	}

	authUsecase := usecase.NewAuthUsecase(userRepo, jwtAuth, mail, google, &cfg.Token, &logger)
	taskUsecase := usecase.NewTaskUsecase(taskRepo)
	userUsecase := usecase.NewUserUsecase(userRepo)

	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler: handler.NewAuthHandler(authUsecase, validator, &logger),
		TaskHandler: handler.NewTaskHandler(taskUsecase, validator, &logger),
		UserHandler: handler.NewUserHandler(userUsecase, validator, &logger),
		JWTAuth:     jwtAuth,
		TokenSecret: cfg.Token.Secret,
		Logger:      &logger,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
