package main

import (
	"os"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/config"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/database"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// @title Food Ordering API
// @version 1.0
// @description Multi-restaurant food ordering: public menus and ordering, back-office order handling and chat.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	loadDotenvFile()
	setUpLogger()

	rootCmd := &cobra.Command{
		Use:           "food-api",
		Short:         "Food ordering API server and maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		seedCommand(),
		createClientCommand(),
		purgeTokensCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter.
// LOG_LEVEL wins over the APP_ENV default.
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	switch config.GetEnvWithDefault("APP_ENV", "development") {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}
}

// openDatabase loads the configuration and connects to the configured database
func openDatabase() (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver:   cfg.DBDriver,
		URL:      cfg.DatabaseURL,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		Path:     cfg.DBPath,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
