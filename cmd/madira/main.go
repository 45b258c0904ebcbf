package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/madira-pos/madira/cmd/madira/cli"
	"github.com/madira-pos/madira/internal/app"
	"github.com/madira-pos/madira/internal/auth"
	"github.com/madira-pos/madira/internal/authz"
	"github.com/madira-pos/madira/internal/billing"
	"github.com/madira-pos/madira/internal/catalog"
	"github.com/madira-pos/madira/internal/ledger"
	"github.com/madira-pos/madira/internal/observability"
	"github.com/madira-pos/madira/internal/platform/cache"
	"github.com/madira-pos/madira/internal/platform/db"
	"github.com/madira-pos/madira/internal/shared"
	"github.com/madira-pos/madira/internal/tenant"
	"github.com/madira-pos/madira/internal/view"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 {
		if err := runSubcommand(ctx, os.Args[1], os.Args[2:]); err != nil {
			slog.Default().Error("subcommand failed", slog.String("command", os.Args[1]), slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	if err := runServer(ctx, stop); err != nil {
		slog.Default().Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func runSubcommand(ctx context.Context, command string, args []string) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	admin := cli.NewAdminCLI(pool, logger)

	switch command {
	case "init-db":
		return admin.InitDB(ctx)

	case "create-store":
		fs := flag.NewFlagSet("create-store", flag.ContinueOnError)
		name := fs.String("name", "", "store name")
		location := fs.String("location", "", "store location")
		validity := fs.String("validity", "", "license validity date (YYYY-MM-DD)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		id, err := admin.CreateStore(ctx, *name, *location, *validity)
		if err != nil {
			return err
		}
		fmt.Printf("store %d created\n", id)
		return nil

	case "create-user":
		fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
		username := fs.String("username", "", "login username")
		password := fs.String("password", "", "login password")
		role := fs.String("role", "", "superadmin, admin or store")
		storeID := fs.Int64("store-id", 0, "store id (required for admin and store roles)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		id, err := admin.CreateUser(ctx, *username, *password, *role, *storeID)
		if err != nil {
			return err
		}
		fmt.Printf("user %d created\n", id)
		return nil

	default:
		return fmt.Errorf("unknown command %q (expected init-db, create-store or create-user)", command)
	}
}

func runServer(ctx context.Context, stop context.CancelFunc) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "madira_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	authzMiddleware := authz.Middleware{Identities: authz.NewService(pool), Logger: logger}

	tenantService := tenant.NewService(tenant.NewRepository(pool))
	tenantHandler := tenant.NewHandler(logger, tenantService, templates, csrfManager)

	catalogService := catalog.NewService(catalog.NewRepository(pool))
	catalogHandler := catalog.NewHandler(logger, catalogService, templates, csrfManager)

	billingService := billing.NewService(billing.NewRepository(pool))
	billingHandler := billing.NewHandler(logger, billingService, templates, csrfManager, metrics)

	ledgerService := ledger.NewService(ledger.NewRepository(pool))
	ledgerHandler := ledger.NewHandler(logger, ledgerService, templates, csrfManager)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthHandler:    authHandler,
		TenantHandler:  tenantHandler,
		CatalogHandler: catalogHandler,
		BillingHandler: billingHandler,
		LedgerHandler:  ledgerHandler,
		Authz:          authzMiddleware,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			stop()
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
