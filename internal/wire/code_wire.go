package wire

import (
	"time"

	"sms-auth/internal/adaptor"
	"sms-auth/pkg/middleware"
	"sms-auth/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

func wireCode(
	r chi.Router,
	codeHandler *adaptor.CodeHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// Issuance is public but rate-limited per IP on top of the
	// per-(mobile, category) resend throttle inside the service.
	r.With(httprate.LimitByIP(10, time.Minute)).
		Post("/api/codes/send", codeHandler.Send)

	// Listing issued codes is restricted to the configured roles
	r.With(
		middleware.Auth(config.JWT, log),
		middleware.RequireRoles(log, config.ListRoles...),
	).Get("/api/codes", codeHandler.List)
}
