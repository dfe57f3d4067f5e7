package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/conwetlab/privatedatasets-backend/config"
	"github.com/conwetlab/privatedatasets-backend/pkg/acl"
	httpclient "github.com/conwetlab/privatedatasets-backend/pkg/client/http"
	"github.com/conwetlab/privatedatasets-backend/pkg/external"
	"github.com/conwetlab/privatedatasets-backend/pkg/handler"
	"github.com/conwetlab/privatedatasets-backend/pkg/hook"
	custom_logger "github.com/conwetlab/privatedatasets-backend/pkg/logger"
	"github.com/conwetlab/privatedatasets-backend/pkg/middleware"
	"github.com/conwetlab/privatedatasets-backend/pkg/parser"
	"github.com/conwetlab/privatedatasets-backend/pkg/repository"
	"github.com/conwetlab/privatedatasets-backend/pkg/search"
	"github.com/conwetlab/privatedatasets-backend/pkg/service"

	database "github.com/conwetlab/privatedatasets-backend/pkg/db"
)

func main() {
	if err := config.Init(config.ParseConfigFlag()); err != nil {
		log.Fatal(err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, _ := custom_logger.GetZapLogger(ctx)
	defer func() {
		// can't handle the error due to https://github.com/uber-go/zap/issues/880
		_ = logger.Sync()
	}()

	db, err := database.NewConnection(&config.Config.Database)
	if err != nil {
		logger.Fatal(fmt.Sprintf("failed to open database connection: %v", err))
	}
	defer database.Close(db)

	repo := repository.NewRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("failed to ensure allow-list schema: %v", err))
	}

	redisClient := redis.NewClient(&config.Config.Cache.Redis.RedisOptions)
	defer redisClient.Close()
	indexer := search.NewRedisIndexer(redisClient, config.Config.Search.ReindexQueueKey)

	// a misconfigured parser should fail the process, not the first
	// webhook call
	if _, err := parser.New(&config.Config); err != nil {
		logger.Fatal(err.Error())
	}

	catalogClient := httpclient.NewCatalogClient(ctx, &config.Config.Catalog)
	aclEngine := acl.NewACL(repo, catalogClient, catalogClient, external.LogNoticer{})
	svc := service.NewService(&config.Config, repo, catalogClient, aclEngine, indexer)
	hooks := hook.NewHooks(svc, aclEngine, indexer, config.Config.Policy)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Config.Server.Port),
		Handler: middleware.Recovery(middleware.AccessLog(handler.NewHandler(svc, hooks).Mux())),
	}

	errSig := make(chan error)
	go func() {
		var err error
		if config.Config.Server.HTTPS.Cert != "" && config.Config.Server.HTTPS.Key != "" {
			err = httpServer.ListenAndServeTLS(config.Config.Server.HTTPS.Cert, config.Config.Server.HTTPS.Key)
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errSig <- err
		}
	}()
	logger.Info(fmt.Sprintf("private datasets backend listening on :%d", config.Config.Server.Port))

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	quitSig := make(chan os.Signal, 1)
	signal.Notify(quitSig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errSig:
		logger.Error(fmt.Sprintf("fatal error on server: %v", err))
		os.Exit(1)
	case <-quitSig:
		logger.Info("shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}
}
