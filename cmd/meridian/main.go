package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hq/meridian/internal/app"
	"github.com/meridian-hq/meridian/internal/auth"
	"github.com/meridian-hq/meridian/internal/authz"
	"github.com/meridian-hq/meridian/internal/clients"
	"github.com/meridian-hq/meridian/internal/contacts"
	"github.com/meridian-hq/meridian/internal/fiscalyears"
	"github.com/meridian-hq/meridian/internal/invitations"
	"github.com/meridian-hq/meridian/internal/observability"
	"github.com/meridian-hq/meridian/internal/orgs"
	"github.com/meridian-hq/meridian/internal/platform/cache"
	"github.com/meridian-hq/meridian/internal/platform/db"
	"github.com/meridian-hq/meridian/internal/products"
	"github.com/meridian-hq/meridian/internal/shared"
	"github.com/meridian-hq/meridian/internal/suppliers"
	"github.com/meridian-hq/meridian/internal/users"
	"github.com/meridian-hq/meridian/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "meridian_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	auditLogger := shared.NewAuditLogger(dbpool)
	invalidator := cache.NewInvalidator(redisClient, logger)
	metrics := observability.NewMetrics()

	authzStore := authz.NewRepository(dbpool)
	seeder := authz.NewSeeder(authzStore, logger)
	binder := authz.NewBinder(authzStore)
	checker := authz.NewChecker(authzStore)
	guard := authz.Middleware{Checker: checker, Logger: logger}

	// Roles and permissions must be in place before traffic is served.
	if err := seedExistingOrganizations(ctx, dbpool, seeder, logger); err != nil {
		logger.Error("seed authorization", slog.Any("error", err))
		os.Exit(1)
	}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	authzHandler := authz.NewHandler(logger, authzStore, binder, guard)

	orgsRepo := orgs.NewRepository(dbpool)
	orgsService := orgs.NewService(orgsRepo, seeder, logger)
	orgsHandler := orgs.NewHandler(logger, orgsService, guard, auditLogger)

	clientsService := clients.NewService(clients.NewRepository(dbpool), invalidator)
	clientsHandler := clients.NewHandler(logger, clientsService, guard, auditLogger)

	suppliersService := suppliers.NewService(suppliers.NewRepository(dbpool), invalidator)
	suppliersHandler := suppliers.NewHandler(logger, suppliersService, guard, auditLogger)

	productsService := products.NewService(products.NewRepository(dbpool), invalidator)
	productsHandler := products.NewHandler(logger, productsService, guard, auditLogger)

	fiscalYearsService := fiscalyears.NewService(fiscalyears.NewRepository(dbpool))
	fiscalYearsHandler := fiscalyears.NewHandler(logger, fiscalYearsService, guard, auditLogger)

	contactsService := contacts.NewService(contacts.NewRepository(dbpool))
	contactsHandler := contacts.NewHandler(logger, contactsService, guard, auditLogger)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	invitationsService := invitations.NewService(
		invitations.NewRepository(dbpool), binder, jobClient, cfg.InviteTTL, cfg.InviteBaseURL, logger)
	invitationsHandler := invitations.NewHandler(logger, invitationsService, guard, auditLogger)

	usersService := users.NewService(users.NewRepository(dbpool))
	usersHandler := users.NewHandler(logger, usersService, guard)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		AuthHandler:        authHandler,
		AuthzHandler:       authzHandler,
		OrgsHandler:        orgsHandler,
		ClientsHandler:     clientsHandler,
		SuppliersHandler:   suppliersHandler,
		ProductsHandler:    productsHandler,
		FiscalYearsHandler: fiscalYearsHandler,
		ContactsHandler:    contactsHandler,
		InvitationsHandler: invitationsHandler,
		UsersHandler:       usersHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// seedExistingOrganizations re-applies the permission catalog and role
// templates to every organization at startup. A seed conflict from a racing
// deploy is retried once.
func seedExistingOrganizations(ctx context.Context, pool *pgxpool.Pool, seeder *authz.Seeder, logger *slog.Logger) error {
	rows, err := pool.Query(ctx, `SELECT id FROM organizations ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, orgID := range ids {
		err := seeder.SeedAll(ctx, authz.SeedOptions{OrganizationID: orgID})
		if errors.Is(err, authz.ErrSeedConflict) {
			logger.Warn("seed conflict, retrying", slog.Int64("org_id", orgID))
			err = seeder.SeedAll(ctx, authz.SeedOptions{OrganizationID: orgID})
		}
		if err != nil {
			return err
		}
	}
	logger.Info("authorization seeded", slog.Int("organizations", len(ids)))
	return nil
}
