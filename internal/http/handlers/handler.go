package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"taskpad/internal/domain"
	"taskpad/internal/repository"
)

// Authenticator is the consumed auth contract: credential operations
// resolve to an identity or fail with a human-readable message.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (domain.Identity, error)
	SignIn(ctx context.Context, email, password string) (domain.Identity, error)
	SignInWithGoogle(ctx context.Context, accessToken string) (domain.Identity, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	Identity(ctx context.Context, email string) (domain.Identity, error)
}

type Handler struct {
	Tasks *repository.TaskRepository
	Auth  Authenticator
}

func NewHandler(tasks *repository.TaskRepository, auth Authenticator) *Handler {
	return &Handler{Tasks: tasks, Auth: auth}
}

// getEmail reads the scoping email set by the auth middleware.
func getEmail(c *gin.Context) (string, bool) {
	v, ok := c.Get("email")
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok && email != ""
}
