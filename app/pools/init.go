package pools

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/toto/app/ledger"
	"github.com/joefazee/toto/internal/cache"
	"github.com/joefazee/toto/internal/deps"
)

const (
	RepoKey    = "pools_repository"
	ServiceKey = "pools_service"
)

// MountPublic mounts public pool read routes
func MountPublic(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)

	poolsGroup := r.Group("/pools")
	poolsGroup.GET("/rounds/:round_id", handler.GetRoundPools)
	poolsGroup.GET("/rounds/:round_id/accounting", handler.GetRoundAccounting)
	poolsGroup.GET("/rounds/:round_id/matches/:match_index/odds", handler.GetLockedOdds)
}

// InitRepositories initializes and registers repositories and services for this module
func InitRepositories(container *deps.Container, config *Config) {
	if config == nil {
		config = GetDefaultConfig()
	}
	if err := config.Validate(); err != nil {
		panic("Invalid pools configuration: " + err.Error())
	}

	repo := NewRepository(container.DB)
	container.RegisterRepository(RepoKey, repo)

	engine := NewOddsEngine(config)
	ledgerPort := container.GetService(ledger.ServiceKey).(ledger.Service)
	oddsCache := cache.NewMemoryCache[LockedOddsResponse]()

	srv := NewService(container.DB, repo, engine, ledgerPort, oddsCache, container.Logger, config)
	container.RegisterService(ServiceKey, srv)
}

// createHandler creates a pools handler with all dependencies
func createHandler(container *deps.Container) *Handler {
	srv := container.GetService(ServiceKey).(Service)
	return NewHandler(srv)
}
