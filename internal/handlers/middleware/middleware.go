package middleware

import (
	"context"
	"topup/config"
	"topup/internal/models"
	"topup/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// Authenticator resolves a session token to the user behind it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *services.SessionClaims, error)
}

type Middleware struct {
	Config config.Config
	auth   Authenticator
	log    logger.Logger
}

func New(config config.Config, auth Authenticator) Middleware {
	return Middleware{
		Config: config,
		auth:   auth,
		log:    logger.New("middleware"),
	}
}
