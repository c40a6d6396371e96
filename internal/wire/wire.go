package wire

import (
	"net/http"

	"sms-auth/internal/adaptor"
	"sms-auth/internal/data/repository"
	"sms-auth/internal/usecase"
	"sms-auth/pkg/captcha"
	"sms-auth/pkg/middleware"
	"sms-auth/pkg/sms"
	"sms-auth/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the wired HTTP surface
type App struct {
	Router *chi.Mux
}

// Wiring initializes services, handlers and the router
func Wiring(
	repo *repository.Repository,
	config *utils.Config,
	sender sms.Sender,
	verifier captcha.Verifier,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, config, sender, verifier, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wireCode(r, handler.Code, config, logger)
	wireAuth(r, handler.Auth, config, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
