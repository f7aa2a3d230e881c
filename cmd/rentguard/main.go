package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rentguard/rentguard/internal/api"
	"github.com/rentguard/rentguard/internal/cli"
	"github.com/rentguard/rentguard/internal/config"
	"github.com/rentguard/rentguard/internal/db"
	"github.com/rentguard/rentguard/internal/events"
	"github.com/rentguard/rentguard/internal/i18n"
	"github.com/rentguard/rentguard/internal/services"
	"github.com/rentguard/rentguard/internal/sessions"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "rentguard",
		Short:         "Rent tracking for small landlords",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "create-user <email>",
			Short: "Create an account, prompting for its password",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				password, err := cli.PromptNewPassword(os.Stdin, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				return withDatabase(func(database *gorm.DB) error {
					return cli.RunCreateUserCommand(database, args[0], password, cmd.OutOrStdout())
				})
			},
		},
		&cobra.Command{
			Use:   "reset-password <email>",
			Short: "Issue a temporary password that must be changed on next login",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(func(database *gorm.DB) error {
					return cli.RunResetPasswordCommand(database, args[0], cmd.OutOrStdout())
				})
			},
		},
		newOrphansCommand(),
		newPremiumCommand(),
	)
	return root
}

func newOrphansCommand() *cobra.Command {
	var purge bool
	command := &cobra.Command{
		Use:   "orphans",
		Short: "List payments whose property no longer exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(func(database *gorm.DB) error {
				return cli.RunOrphansCommand(database, purge, cmd.OutOrStdout())
			})
		},
	}
	command.Flags().BoolVar(&purge, "purge", false, "delete the listed payments")
	return command
}

func newPremiumCommand() *cobra.Command {
	var revoke bool
	command := &cobra.Command{
		Use:   "premium <email>",
		Short: "Lift the free-tier property limit for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(database *gorm.DB) error {
				return cli.RunSetPremiumCommand(database, args[0], !revoke, cmd.OutOrStdout())
			})
		},
	}
	command.Flags().BoolVar(&revoke, "revoke", false, "return the user to the free plan")
	return command
}

func withDatabase(run func(database *gorm.DB) error) error {
	cfg, err := config.LoadDatabaseOnly()
	if err != nil {
		return err
	}
	database, err := db.Open(cfg.DBDriver, cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}
	return run(database)
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	time.Local = cfg.Location

	database, err := db.Open(cfg.DBDriver, cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	i18nManager, err := i18n.NewManager(cfg.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	publisher, closePublisher, err := newEventPublisher(cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	revocations, closeRevocations, err := newRevocationStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRevocations()

	handler, err := api.NewHandler(database, api.Options{
		SecretKey:    cfg.SecretKey,
		Location:     cfg.Location,
		CookieSecure: cfg.CookieSecure,
		I18n:         i18nManager,
		Policy: services.PropertyPolicy{
			FreeTierLimit: cfg.FreeTierLimit,
			Rates:         cfg.Rates,
			DayOverflow:   cfg.DayOverflow,
		},
		Events:      publisher,
		Revocations: revocations,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := newServerApp(handler, cfg.AllowedOrigins, os.Stdout)

	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("RentGuard listening on http://0.0.0.0:%s (db: %s, tz: %s)", cfg.Port, cfg.DBDriver, cfg.Location.String())
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func newServerApp(handler *api.Handler, allowedOrigins string, logOutput io.Writer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "RentGuard",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Output: logOutput}))
	app.Use(compress.New())
	if allowedOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
			AllowHeaders:     "Authorization,Content-Type,Accept-Language",
			AllowCredentials: allowedOrigins != "*",
		}))
	}
	app.Use(handler.LanguageMiddleware)

	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app
}

func newEventPublisher(cfg config.Config) (services.EventPublisher, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		return services.LogPublisher{}, func() {}, nil
	}
	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaPrefix)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka init failed: %w", err)
	}
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			log.Printf("kafka close failed: %v", err)
		}
	}, nil
}

func newRevocationStore(ctx context.Context, cfg config.Config) (sessions.RevocationStore, func(), error) {
	if cfg.RedisAddr == "" {
		return sessions.NewMemoryStore(), func() {}, nil
	}
	store, err := sessions.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("redis init failed: %w", err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Printf("redis close failed: %v", err)
		}
	}, nil
}
