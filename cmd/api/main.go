package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aniladanir/hirechat/internal/cache"
	memoryCache "github.com/aniladanir/hirechat/internal/cache/memory"
	redisCache "github.com/aniladanir/hirechat/internal/cache/redis"
	httpHandler "github.com/aniladanir/hirechat/internal/handler/http"
	"github.com/aniladanir/hirechat/internal/persistant/postgresql"
	conversationRepo "github.com/aniladanir/hirechat/internal/repository/conversation"
	"github.com/aniladanir/hirechat/internal/service"
	"github.com/aniladanir/hirechat/internal/store"
	"github.com/aniladanir/hirechat/internal/store/file"
	"github.com/aniladanir/hirechat/internal/store/kv"
	"github.com/aniladanir/hirechat/internal/store/memory"
	mongoStore "github.com/aniladanir/hirechat/internal/store/mongo"
	pgStore "github.com/aniladanir/hirechat/internal/store/postgres"
)

const documentName = "myhire"

var (
	configFile = flag.String("config", "config.json", "config file path")
	envFile    = flag.String("env", ".env", "optional env file with HIRECHAT_* overrides")
)

// closer releases an external dependency on shutdown
type closer func(ctx context.Context) error

func main() {
	// create root context
	appCtx, appCtxCancel := context.WithCancel(context.Background())
	defer appCtxCancel()

	// listen for terminate signal
	notifyCtx, stop := signal.NotifyContext(appCtx, syscall.SIGTERM, os.Interrupt)
	defer stop()

	// parse flags
	flag.Parse()

	// parse config
	config, err := LoadConfig(*configFile, *envFile)
	if err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	// setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// initialize external dependencies
	docStore, evtCache, closers, err := initExternalDependencies(notifyCtx, config, logger)
	if err != nil {
		log.Fatalf("failed to initialize external dependencies: %v", err)
	}

	// init conversation repository
	repo := conversationRepo.NewConversationRepository(docStore, evtCache)

	// init event notifier
	notifier, err := initNotifier(repo, config, logger)
	if err != nil {
		log.Fatalf("failed to initiate event notifier: %v", err)
	}

	// init services
	opts := service.Options{
		Logger:      logger,
		Notifier:    notifier,
		RoomURLBase: config.RoomURLBase,
	}
	chatSvc := service.NewChatService(repo, opts)
	callSvc := service.NewCallService(repo, opts)

	// init http handler
	httpHandler := httpHandler.NewHttpHandler(
		httpHandler.Config{
			Addr:            fmt.Sprintf(":%d", config.HttpPort),
			AllowOrigins:    config.CorsAllowOrigins,
			RateLimit:       config.RateLimitPerSecond,
			RateLimitWindow: time.Second,
			WatchInterval:   config.PollInterval,
		},
		chatSvc,
		callSvc,
		logger.With(slog.String("component", "httpHandler")),
	)

	notifier.Start()

	wg := sync.WaitGroup{}
	// run http handler
	wg.Go(func() {
		logger.Info("http server listening", "port", config.HttpPort, "store", config.StoreDriver)
		if err := httpHandler.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server encountered with an error and closed", "error", err.Error())
		}
		// cancel app context if http handler fails
		appCtxCancel()
	})

	// graceful shutdown
	wg.Go(func() {
		<-notifyCtx.Done()
		logger.Info("application shutting down...")

		shutDownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()

		httpHandler.Shutdown(shutDownCtx)
		notifier.Stop()
		for _, c := range closers {
			if err := c(shutDownCtx); err != nil {
				logger.Warn("failed to close dependency", "error", err.Error())
			}
		}
	})

	wg.Wait()
	os.Exit(0)
}

func initExternalDependencies(ctx context.Context, config *Config, logger *slog.Logger) (docStore store.Store, evtCache cache.Cache, closers []closer, err error) {
	// redis backs the cache whenever configured, even for other store drivers
	if config.RedisAddr != "" {
		rCache, rErr := redisCache.NewRedisCache(ctx, config.RedisAddr)
		if rErr != nil {
			return nil, nil, nil, rErr
		}
		closers = append(closers, func(context.Context) error { return rCache.Close() })
		evtCache = rCache
	} else {
		evtCache = memoryCache.New()
	}

	switch config.StoreDriver {
	case "memory":
		docStore = memory.New(nil)
	case "file":
		docStore = file.New(config.StoreFilePath)
	case "redis":
		docStore = kv.New(evtCache)
	case "postgres":
		db, dbErr := postgresql.Initialize(ctx, config.DbConnString, pgStore.Models())
		if dbErr != nil {
			return nil, nil, nil, dbErr
		}
		closers = append(closers, func(context.Context) error { return postgresql.Close(db) })
		docStore = pgStore.New(db, documentName)
	case "mongo":
		mdb, mErr := mongoStore.NewDB(ctx, config.MongoURI, config.MongoDatabase)
		if mErr != nil {
			return nil, nil, nil, mErr
		}
		closers = append(closers, func(ctx context.Context) error { return mdb.Client().Disconnect(ctx) })
		docStore = mongoStore.New(mdb, documentName)
	}

	if config.StoreFallbackFile != "" && config.StoreDriver != "file" && config.StoreDriver != "memory" {
		docStore = store.WithFallback(
			docStore,
			file.New(config.StoreFallbackFile),
			logger.With(slog.String("component", "storeFallback")),
		)
	}

	return docStore, evtCache, closers, nil
}

func initNotifier(repo conversationRepo.Repository, config *Config, logger *slog.Logger) (service.EventNotifier, error) {
	if config.WebHookUrl == "" {
		return service.NopEventNotifier(), nil
	}
	return service.NewWebhookNotifier(
		repo,
		logger.With(slog.String("component", "eventNotifier")),
		config.WebHookUrl,
		&config.NotifyMaxRetry,
		config.NotifyWorkers,
		256,
	)
}
