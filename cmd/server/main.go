package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/tasklite/backend/api/handler"
	"github.com/tasklite/backend/internal/config"
	"github.com/tasklite/backend/internal/middleware"
	"github.com/tasklite/backend/internal/router"
	"github.com/tasklite/backend/internal/services/lifecycle"
	"github.com/tasklite/backend/pkg/httpcontext"
	"github.com/tasklite/backend/pkg/logger"
	"github.com/tasklite/backend/repository"
	"github.com/tasklite/backend/repository/boltdb"
	"github.com/tasklite/backend/repository/jsonfile"
	taskUC "github.com/tasklite/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.NotifyContext(context.Background())
	defer stop()

	var taskRepo repository.TaskRepository
	switch cfg.Storage.Driver {
	case config.DriverBoltDB:
		boltRepo, err := boltdb.Open(cfg.Storage.Path)
		if err != nil {
			zapLogger.Fatal("failed to open bolt store", zap.Error(err))
		}
		manager.Register("bolt_store", func(ctx context.Context) error {
			return boltRepo.Close()
		})
		taskRepo = boltRepo
	default:
		taskRepo = jsonfile.New(cfg.Storage.Path, zapLogger)
	}

	taskUseCase := taskUC.New(taskRepo, zapLogger)
	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(taskRepo, cfg.AppName, ctxAdapter, zapLogger),
	}

	r := router.New(handlers,
		middleware.Recover(zapLogger),
		middleware.RequestLog(zapLogger),
	)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage_driver", cfg.Storage.Driver),
			zap.String("storage_path", cfg.Storage.Path))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
