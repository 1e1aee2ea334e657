package bets

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/toto/app/ledger"
	"github.com/joefazee/toto/app/pools"
	"github.com/joefazee/toto/internal/deps"
)

const (
	RepoKey    = "bets_repository"
	ServiceKey = "bets_service"
)

// MountAuthenticated mounts authenticated bet routes
func MountAuthenticated(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)

	betsGroup := r.Group("/bets")
	betsGroup.POST("", handler.PlaceBet)
	betsGroup.DELETE("/:id", handler.CancelBet)
	betsGroup.GET("/mine", handler.GetMyBets)
}

// MountPublic mounts public bet routes
func MountPublic(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)

	r.GET("/bets/:id", handler.GetBet)
}

// InitRepositories initializes and registers repositories and services for this module
func InitRepositories(container *deps.Container, config *Config) {
	if err := config.Validate(); err != nil {
		panic(err)
	}

	repo := NewRepository(container.DB)
	container.RegisterRepository(RepoKey, repo)

	poolsService := container.GetService(pools.ServiceKey).(pools.Service)
	ledgerPort := container.GetService(ledger.ServiceKey).(ledger.Service)
	policy := NewMultiplierPolicy(config)

	srv := NewService(container.DB, repo, poolsService, ledgerPort, policy, container.Logger, config)
	container.RegisterService(ServiceKey, srv)
}

// createHandler creates a bets handler with all dependencies
func createHandler(container *deps.Container) *Handler {
	srv := container.GetService(ServiceKey).(Service)
	return NewHandler(srv)
}
