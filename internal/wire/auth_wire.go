package wire

import (
	"sms-auth/internal/adaptor"
	"sms-auth/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// Flows register only when their category is configured
	if config.SignIn != nil {
		r.Post("/api/auth/signin", authHandler.SignIn)
	}
	if config.Reset != nil {
		r.Post("/api/auth/reset", authHandler.Reset)
	}
}
