package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"noteshare/config"
	"noteshare/handler"
	"noteshare/logger"
	"noteshare/repository"
	"noteshare/services"
	"noteshare/usecase"
	"noteshare/utils"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logs, err := logger.New().
		WithLevel(cfg.Log.Level).
		Pretty(cfg.Log.Pretty).
		FromPath(cfg.Log.Path).
		Make()
	if err != nil {
		return err
	}
	logs.Install()
	defer logs.Close()

	if err := utils.InitValidator(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := utils.ConnectMongo(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	db := client.Database(cfg.Database.DatabaseName)
	if err := repository.SetupIndexes(ctx, db); err != nil {
		return err
	}

	blacklist, err := services.NewTokenBlacklist(ctx, cfg.Redis.URL)
	if err != nil {
		return err
	}
	storage, err := services.NewStorage(ctx, cfg.Uploads)
	if err != nil {
		return err
	}

	router := handler.SetupRouter(buildServices(cfg, client, db, blacklist, storage))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if closer, ok := blacklist.(*services.RedisTokenBlacklist); ok {
		_ = closer.Close()
	}
	log.Info().Msg("server shutdown complete")
	return nil
}

func buildServices(cfg *config.Config, client *mongo.Client, db *mongo.Database, blacklist services.TokenBlacklist, storage services.Storage) *handler.Services {
	timeout := cfg.Database.OperationTimeout
	users := repository.GetUserRepo(db, timeout)
	notes := repository.GetNotesRepo(db, timeout)
	favorites := repository.GetFavoritesRepo(db, timeout)
	comments := repository.GetCommentsRepo(db, timeout)
	sessions := repository.GetSessionRepo(db, timeout)
	tx := &repository.Transactor{Client: client, Enabled: cfg.Database.UseTransactions}

	tokens := services.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.Issuer)
	images := &usecase.ImageUploader{Storage: storage, MaxSize: cfg.Uploads.MaxSize}
	assembler := &usecase.ResponseAssembler{Users: users, Favorites: favorites, Comments: comments}

	health := map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
	}
	if redis, ok := blacklist.(*services.RedisTokenBlacklist); ok {
		health["cache"] = redis.Ping
	}

	return &handler.Services{
		Users: &usecase.UserService{
			Users:      users,
			Notes:      notes,
			Favorites:  favorites,
			Comments:   comments,
			Sessions:   sessions,
			Tx:         tx,
			Tokens:     tokens,
			Blacklist:  blacklist,
			Images:     images,
			TOTPIssuer: cfg.JWT.Issuer,
		},
		Notes: &usecase.NotesService{
			Notes:     notes,
			Favorites: favorites,
			Comments:  comments,
			Tx:        tx,
			Assembler: assembler,
			Images:    images,
		},
		Favorites:   &usecase.FavoritesService{Notes: notes, Favorites: favorites, Assembler: assembler},
		Comments:    &usecase.CommentsService{Notes: notes, Users: users, Comments: comments, Assembler: assembler},
		Storage:     storage,
		Health:      health,
		MaxBodySize: cfg.Server.MaxBodySize,
	}
}
