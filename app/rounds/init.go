package rounds

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/toto/app/bets"
	"github.com/joefazee/toto/app/pools"
	"github.com/joefazee/toto/internal/deps"
)

const (
	RepoKey    = "rounds_repository"
	ServiceKey = "rounds_service"

	// PermManageRounds gates the operator lifecycle endpoints.
	PermManageRounds = "rounds:manage"
)

// MountOperator mounts the operator round lifecycle routes
func MountOperator(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)

	roundsGroup := r.Group("/rounds")
	roundsGroup.POST("", handler.OpenRound)
	roundsGroup.POST("/:id/seed", handler.SeedRound)
	roundsGroup.POST("/:id/close", handler.CloseRound)
	roundsGroup.POST("/:id/resolve", handler.RequestResolution)
	roundsGroup.POST("/:id/resolve-fallback", handler.ResolveWithFallback)
	roundsGroup.POST("/:id/sweep", handler.SweepRound)
}

// MountPublic mounts public round routes
func MountPublic(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)

	r.GET("/rounds", handler.ListRounds)
	r.GET("/rounds/:id", handler.GetRound)
}

// InitRepositories initializes and registers repositories and services for this module
func InitRepositories(container *deps.Container, config *Config, source RandomnessSource) {
	if err := config.Validate(); err != nil {
		panic(err)
	}

	repo := NewRepository(container.DB)
	container.RegisterRepository(RepoKey, repo)

	poolsService := container.GetService(pools.ServiceKey).(pools.Service)
	betsService := container.GetService(bets.ServiceKey).(bets.Service)

	srv := NewService(container.DB, repo, poolsService, betsService, source, container.Logger, config)
	source.Subscribe(srv.OnRollsReceived)
	container.RegisterService(ServiceKey, srv)
}

// createHandler creates a rounds handler with all dependencies
func createHandler(container *deps.Container) *Handler {
	srv := container.GetService(ServiceKey).(Service)
	return NewHandler(srv)
}
