package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/harentsoaR/smart-health-api/internal/config"
	"github.com/harentsoaR/smart-health-api/internal/database"
	"github.com/harentsoaR/smart-health-api/internal/logger"
	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/repository"
	"github.com/harentsoaR/smart-health-api/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "smart-health-api",
		Short: "Smart Health clinic API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
		SilenceUsage: true,
	}
	rootCmd.AddCommand(serveCmd(), migrateCmd(), createAdminCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and report workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, db, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			log.Info("schema is up to date")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createadmin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if username == "" || email == "" || len(password) < 8 {
				return fmt.Errorf("username, email and a password of at least 8 characters are required")
			}

			_, log, db, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			hash, err := utils.HashPassword(password)
			if err != nil {
				return err
			}
			admin := &models.User{
				Username: username,
				Email:    strings.ToLower(email),
				Password: hash,
				Role:     models.RoleAdmin,
				IsActive: true,
			}
			if err := repository.NewUserRepository(db).Create(cmd.Context(), admin); err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			log.Info("admin created", zap.Uint("user_id", admin.ID), zap.String("username", admin.Username))
			return nil
		},
	}
	cmd.Flags().String("username", "", "Admin username")
	cmd.Flags().String("email", "", "Admin email")
	cmd.Flags().String("password", "", "Admin password")
	return cmd
}

// bootstrap loads configuration, the logger and the relational store shared by
// every command.
func bootstrap(ctx context.Context) (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	if !cfg.DotEnvLoaded {
		log.Info("no .env file found, relying on environment variables")
	}
	db, err := database.ConnectPostgres(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}
