package claims

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/toto/app/ledger"
	"github.com/joefazee/toto/app/pools"
	"github.com/joefazee/toto/internal/deps"
)

const (
	RepoKey    = "claims_repository"
	ServiceKey = "claims_service"
)

// MountAuthenticated mounts authenticated claim routes
func MountAuthenticated(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)

	r.POST("/bets/:id/claim", handler.Claim)
}

// MountPublic mounts public claim routes
func MountPublic(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)

	r.GET("/bets/:id/payout", handler.PreviewPayout)
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

	srv := NewService(container.DB, repo, poolsService, ledgerPort, container.Logger, config)
	container.RegisterService(ServiceKey, srv)
}

// createHandler creates a claims handler with all dependencies
func createHandler(container *deps.Container) *Handler {
	srv := container.GetService(ServiceKey).(Service)
	return NewHandler(srv)
}
