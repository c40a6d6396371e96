// main.go
package main

import (
	"log"

	"sms-auth/cmd"
	"sms-auth/internal/data/repository"
	"sms-auth/internal/wire"
	"sms-auth/pkg/captcha"
	"sms-auth/pkg/database"
	"sms-auth/pkg/sms"
	"sms-auth/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Int("categories", len(config.Categories)),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// External collaborators
	sender := sms.NewGatewayClient(config.SMS.Endpoint, logger)
	verifier := captcha.NewHTTPVerifier(config.Captcha.Endpoint, config.Captcha.Secret, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, config, sender, verifier, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port, logger)
}
