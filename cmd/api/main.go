package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/claimsledger/internal/adapters/cache"
	"github.com/zatekoja/claimsledger/internal/adapters/database"
	"github.com/zatekoja/claimsledger/internal/adapters/events"
	"github.com/zatekoja/claimsledger/internal/adapters/ledger"
	"github.com/zatekoja/claimsledger/internal/api/handlers"
	"github.com/zatekoja/claimsledger/internal/api/middleware"
	"github.com/zatekoja/claimsledger/internal/api/routes"
	"github.com/zatekoja/claimsledger/internal/application/services"
	"github.com/zatekoja/claimsledger/internal/domain/providers"
	"github.com/zatekoja/claimsledger/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/claimsledger/internal/infrastructure/clients/redis"
	"github.com/zatekoja/claimsledger/internal/infrastructure/observability"
	"github.com/zatekoja/claimsledger/pkg/config"
	"github.com/zatekoja/claimsledger/pkg/secrets"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	observability.InitLogger("claims-ledger", os.Getenv("APP_ENV"))

	// Vault runs before config.Load so secrets land in the environment first.
	vaultResult, err := secrets.Apply(ctx, secrets.ConfigFromEnv())
	if err != nil {
		log.Warn().Err(err).Msg("failed to apply vault secrets")
	} else if vaultResult.Enabled {
		log.Info().
			Str("path", vaultResult.Path).
			Int("loaded", vaultResult.Loaded).
			Int("skipped", vaultResult.Skipped).
			Msg("vault secrets applied")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// The ledger is the source of truth; Redis and Postgres are optional
	// supporting infrastructure the service degrades without.
	store := ledger.NewStore()

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, continuing without cache and events")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("redis client initialized")
	}

	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
	}

	adminService := services.NewAdminService(store)
	registryService := services.NewRegistryService(store)
	lifecycleService := services.NewLifecycleService(store, eventBus, cfg.Engine)
	recordsService := services.NewRecordsService(store, eventBus)
	hammerService := services.NewHammerService(store, eventBus, cfg.Engine)

	if cfg.Archive.Enabled {
		if eventBus == nil {
			log.Warn().Msg("archive enabled but redis unavailable, archive disabled")
		} else {
			pgClient, err := postgres.NewClient(&cfg.Database)
			if err != nil {
				log.Fatal().Err(err).Msg("archive enabled but postgres unavailable")
			}
			defer pgClient.Close()

			archiveAdapter := database.NewProcessedClaimArchiveAdapter(pgClient)
			archiveService := services.NewArchiveService(store, eventBus, archiveAdapter)
			go func() {
				if err := archiveService.Run(ctx); err != nil && err != context.Canceled {
					log.Error().Err(err).Msg("archive service stopped")
				}
			}()
			log.Info().Msg("archive service started")
		}
	}

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
	}

	router := routes.NewRouter(
		handlers.NewAdminHandler(adminService),
		handlers.NewClaimHandler(lifecycleService, hammerService),
		handlers.NewRecordsHandler(registryService, recordsService),
		cacheMiddleware,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}
