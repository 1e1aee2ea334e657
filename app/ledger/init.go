package ledger

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/toto/internal/deps"
)

const (
	RepoKey    = "ledger_repository"
	ServiceKey = "ledger_service"
)

// MountAuthenticated mounts authenticated ledger routes
func MountAuthenticated(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)

	accountsGroup := r.Group("/accounts")
	accountsGroup.POST("", handler.CreateAccount)
	accountsGroup.GET("/:id", handler.GetAccount)
	accountsGroup.GET("/:id/entries", handler.GetAccountEntries)
}

// MountPublic mounts public ledger routes
func MountPublic(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)

	r.GET("/reserve", handler.GetReserve)
}

// InitRepositories initializes and registers repositories and services for this module
func InitRepositories(container *deps.Container) {
	repo := NewRepository(container.DB)
	container.RegisterRepository(RepoKey, repo)

	srv := NewService(container.DB, repo)
	container.RegisterService(ServiceKey, srv)
}

// createHandler creates a ledger handler with all dependencies
func createHandler(container *deps.Container) *Handler {
	srv := container.GetService(ServiceKey).(Service)
	return NewHandler(srv)
}
