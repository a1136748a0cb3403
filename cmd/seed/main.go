package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wardwatch/grievance-service/internal/config"
	"github.com/wardwatch/grievance-service/internal/domain"
	"github.com/wardwatch/grievance-service/internal/observability"
	"github.com/wardwatch/grievance-service/internal/persistence"
	"github.com/wardwatch/grievance-service/internal/repository"
	"github.com/wardwatch/grievance-service/internal/service"
)

var (
	adminEmail    string
	adminPassword string
	adminName     string

	wardAdminCount    int
	wardAdminPassword string
	wardAdminDomain   string
)

var rootCmd = &cobra.Command{
	Use:           "seed",
	Short:         "Provision administrator accounts",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Create the main administrator if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminPassword == "" {
			return fmt.Errorf("--password or SEED_ADMIN_PASSWORD is required")
		}
		return withAuthService(cmd.Context(), func(ctx context.Context, auth *service.AuthService, logger *zap.Logger) error {
			return provision(ctx, auth, logger, service.StaffInput{
				Name:     adminName,
				Email:    adminEmail,
				Password: adminPassword,
				Role:     domain.RoleAdmin,
			})
		})
	},
}

var wardAdminsCmd = &cobra.Command{
	Use:   "ward-admins",
	Short: "Create one ward administrator per ward, numbered from 1",
	RunE: func(cmd *cobra.Command, args []string) error {
		if wardAdminCount < 1 {
			return fmt.Errorf("--count must be at least 1")
		}
		return withAuthService(cmd.Context(), func(ctx context.Context, auth *service.AuthService, logger *zap.Logger) error {
			for i := 1; i <= wardAdminCount; i++ {
				err := provision(ctx, auth, logger, service.StaffInput{
					Name:     fmt.Sprintf("Ward Admin %d", i),
					Email:    fmt.Sprintf("wardadmin%d@%s", i, wardAdminDomain),
					Password: fmt.Sprintf(wardAdminPassword, i),
					Role:     domain.RoleWardAdmin,
					Ward:     strconv.Itoa(i),
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	},
}

func init() {
	adminCmd.Flags().StringVar(&adminEmail, "email", envOr("SEED_ADMIN_EMAIL", "mainadmin@nagarsaathi.com"), "administrator email")
	adminCmd.Flags().StringVar(&adminPassword, "password", os.Getenv("SEED_ADMIN_PASSWORD"), "administrator password")
	adminCmd.Flags().StringVar(&adminName, "name", "Main Admin", "administrator display name")

	wardAdminsCmd.Flags().IntVar(&wardAdminCount, "count", 20, "number of wards")
	wardAdminsCmd.Flags().StringVar(&wardAdminPassword, "password-pattern", "ward@%d", "password pattern, %d is the ward number")
	wardAdminsCmd.Flags().StringVar(&wardAdminDomain, "email-domain", "nagarsaathi.com", "email domain for ward administrators")

	rootCmd.AddCommand(adminCmd, wardAdminsCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("seed: %v", err)
	}
}

func withAuthService(ctx context.Context, run func(context.Context, *service.AuthService, *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: repository.NewUserRepository(pg.PoolHandle()),
		Logger:   logger,
	})
	return run(ctx, authService, logger)
}

func provision(ctx context.Context, auth *service.AuthService, logger *zap.Logger, input service.StaffInput) error {
	user, created, err := auth.ProvisionStaff(ctx, input)
	if err != nil {
		return fmt.Errorf("provision %s: %w", input.Email, err)
	}
	if created {
		logger.Info("account created", zap.String("email", user.Email), zap.String("role", string(user.Role)), zap.String("ward", user.Ward))
	} else {
		logger.Info("account already exists", zap.String("email", user.Email))
	}
	return nil
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
