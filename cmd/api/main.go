package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joefazee/toto/app"
	"github.com/joefazee/toto/app/api"
	"github.com/joefazee/toto/app/bets"
	"github.com/joefazee/toto/app/claims"
	"github.com/joefazee/toto/app/database"
	"github.com/joefazee/toto/app/ledger"
	"github.com/joefazee/toto/app/pools"
	"github.com/joefazee/toto/app/rounds"
	"github.com/joefazee/toto/internal/cache"
	"github.com/joefazee/toto/internal/deps"
	"github.com/joefazee/toto/internal/logger"
	"github.com/joefazee/toto/internal/router"
	"github.com/joefazee/toto/internal/security"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.New(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	appLogger := logger.NewZeroLogger(os.Stdout, logger.LevelInfo, logger.Fields{
		"app": "toto",
		"env": cfg.Env,
	})

	tokenMaker, err := security.NewPasetoMaker(cfg.TokenSymmetricKey)
	if err != nil {
		log.Fatal("Failed to create token maker:", err)
	}

	cacheService := cache.NewCache[string](cache.MemoryBackend)
	container := deps.NewContainer(db, tokenMaker, appLogger, cacheService)

	ledger.InitRepositories(container)
	pools.InitRepositories(container, &cfg.Pools)
	bets.InitRepositories(container, &cfg.Bets)

	randomnessSource := rounds.NewPseudoSource(2 * time.Second)
	rounds.InitRepositories(container, &cfg.Rounds, randomnessSource)
	claims.InitRepositories(container, &cfg.Claims)

	ledgerService := container.GetService(ledger.ServiceKey).(ledger.Service)
	if _, err := ledgerService.EnsureReserve(context.Background(), cfg.ReserveInitialBalance); err != nil {
		log.Fatal("Failed to ensure reserve account:", err)
	}

	r := gin.Default()
	r.GET("/healthz", api.HealthCheck)

	mounter := router.NewMounter(container)

	mounter.Public(r).
		Mount(ledger.MountPublic).
		Mount(pools.MountPublic).
		Mount(rounds.MountPublic).
		Mount(bets.MountPublic).
		Mount(claims.MountPublic)

	mounter.Authenticated(r).
		WithAuth(api.Authenticate(tokenMaker)).
		Mount(ledger.MountAuthenticated).
		Mount(bets.MountAuthenticated).
		Mount(claims.MountAuthenticated)

	mounter.Authorized(r, rounds.PermManageRounds).
		WithAuth(api.Authenticate(tokenMaker)).
		WithPermission(api.GrantPermissions(operatorPermissions(cfg.OperatorAccounts))).
		WithPermission(api.Can(rounds.PermManageRounds)).
		Mount(rounds.MountOperator)

	roundsService := container.GetService(rounds.ServiceKey).(rounds.Service)
	scheduler := rounds.NewScheduler(roundsService, appLogger, &cfg.Rounds)
	if err := scheduler.Start(); err != nil {
		log.Fatal("Failed to start round scheduler:", err)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		scheduler.Stop()
		os.Exit(0)
	}()

	appLogger.Info("starting API server", map[string]interface{}{
		"host": cfg.AppHost,
		"port": cfg.AppPort,
	})
	if err := r.Run(fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort)); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// operatorPermissions maps the configured operator account ids to the round
// lifecycle permission. Malformed ids are skipped rather than silently
// granting access to a mistyped account.
func operatorPermissions(accounts []string) map[uuid.UUID][]string {
	operators := make(map[uuid.UUID][]string, len(accounts))
	for _, raw := range accounts {
		id, err := uuid.Parse(raw)
		if err != nil {
			log.Printf("Skipping malformed operator account id %q", raw)
			continue
		}
		operators[id] = []string{rounds.PermManageRounds}
	}
	return operators
}
