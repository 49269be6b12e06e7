package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/config"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/domain/admission"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/domain/burns"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/domain/cme"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/domain/diabeticfoot"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/auth"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/db"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/metrics"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/middleware"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/openapi"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/reporting"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/schema"
	sqlfiles "github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/migrations"
)

var version = "dev"

// requestBodies names the schema definition each write route validates.
var requestBodies = map[string]string{
	"POST /api/v1/admissions":                               "Admission",
	"PUT /api/v1/admissions/:id":                            "Admission",
	"POST /api/v1/admissions/:id/discharge":                 "DischargeRequest",
	"POST /api/v1/who-discharge/calculate":                  "WHODischarge",
	"POST /api/v1/diabetic-foot/calculate":                  "DiabeticFootInput",
	"POST /api/v1/admissions/:id/diabetic-foot-assessments": "DiabeticFootInput",
	"POST /api/v1/burns/tbsa":                               "TBSAInput",
	"POST /api/v1/burns/baux":                               "Baux",
	"POST /api/v1/burns/absi":                               "ABSI",
	"POST /api/v1/burns/resuscitation":                      "Resuscitation",
	"POST /api/v1/burns/titrate":                            "Titration",
	"POST /api/v1/burns/vitals":                             "Vitals",
	"POST /api/v1/burns/calculate":                          "BurnAssessment",
	"POST /api/v1/admissions/:id/burn-assessments":          "BurnAssessment",
	"POST /api/v1/cme/modules/:module/topics/:topic/quiz":   "QuizAnswers",
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "surgassist",
		Short:        "Surgical unit clinical scoring server",
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(calcCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger.Level(cfg.Level())
}

func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return db.NewPool(ctx, cfg.DatabaseURL, db.PoolConfig{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaName, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")
			target, _ := cmd.Flags().GetInt("to")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, migrationSource(dir, cfg))
			fmt.Fprintf(cmd.OutOrStdout(), "Running migrations on schema: %s\n", schemaName)

			var count int
			if target > 0 {
				count, err = migrator.UpTo(ctx, schemaName, target)
			} else {
				count, err = migrator.Up(ctx, schemaName)
			}
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("schema", db.DefaultSchema, "Target schema for migrations")
	upCmd.Flags().String("dir", "", "Read migrations from this directory instead of MIGRATIONS_DIR or the embedded set")
	upCmd.Flags().Int("to", 0, "Stop after this version")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaName, _ := cmd.Flags().GetString("schema")
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrationSource(dir, cfg)).Status(ctx, schemaName)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), migrationTable(schemaName, statuses))
			return nil
		},
	}
	statusCmd.Flags().String("schema", db.DefaultSchema, "Target schema for migrations")
	statusCmd.Flags().String("dir", "", "Read migrations from this directory instead of MIGRATIONS_DIR or the embedded set")
	cmd.AddCommand(statusCmd)

	return cmd
}

// migrationSource prefers --dir, then MIGRATIONS_DIR, then the files built
// into the binary.
func migrationSource(dir string, cfg *config.Config) fs.FS {
	if dir == "" {
		dir = cfg.MigrationsDir
	}
	if dir == "" {
		return sqlfiles.FS
	}
	return os.DirFS(dir)
}

func migrationTable(schemaName string, statuses []db.MigrationStatus) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("Migrations (" + schemaName + ")")
	tw.AppendHeader(table.Row{"Version", "Name", "Status", "Applied at"})
	pending := 0
	for _, s := range statuses {
		status, appliedAt := "pending", ""
		if s.Applied {
			status = "applied"
			if s.Modified {
				status = "modified"
			}
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		} else {
			pending++
		}
		tw.AppendRow(table.Row{s.Version, s.Name, status, appliedAt})
	}
	tw.AppendFooter(table.Row{"", "", fmt.Sprintf("%d pending", pending), ""})
	return tw.Render()
}

// deps are the stores behind the API. newServer never touches the network,
// so tests pass in-memory stores.
type deps struct {
	cfg         *config.Config
	logger      zerolog.Logger
	pool        *pgxpool.Pool
	queries     db.Querier
	admissions  admission.AdmissionRepository
	discharges  admission.DischargeRepository
	tx          db.TxRunner
	footRepo    diabeticfoot.AssessmentRepository
	burnRepo    burns.AssessmentRepository
	auditRecord middleware.AuditRecorder
}

func newServer(d deps) (*echo.Echo, error) {
	cfg, logger := d.cfg, d.logger

	schemas, err := schema.New()
	if err != nil {
		return nil, fmt.Errorf("load schemas: %w", err)
	}
	library, err := cme.Load()
	if err != nil {
		return nil, fmt.Errorf("load CME content: %w", err)
	}
	collector := metrics.New(cfg.UnitName)

	admissionSvc := admission.NewService(d.admissions, d.discharges, d.tx, collector, logger)
	footSvc := diabeticfoot.NewService(d.footRepo, collector, logger)
	burnSvc := burns.NewService(d.burnRepo, collector, logger)
	cmeSvc := cme.NewService(library, collector, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	rl := middleware.DefaultRateLimitConfig()
	rl.RequestsPerSecond = cfg.RateLimitRPS
	rl.BurstSize = cfg.RateLimitBurst
	rl.Skipper = auth.AuthSkipper

	e.Use(middleware.RequestID())
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.TLSEnabled))
	e.Use(middleware.Sanitize(logger))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch},
		AllowHeaders:  []string{"Authorization", "Content-Type", "If-None-Match", middleware.RequestIDHeader},
		ExposeHeaders: []string{"ETag", middleware.RequestIDHeader, "Retry-After"},
	}))
	e.Use(collector.Middleware())

	if cfg.IsDev() && cfg.AuthIssuer == "" {
		logger.Warn().Msg("development auth active: every request without a token is an admin")
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.AuthSigningKey),
			Unit:       cfg.UnitName,
			Skipper:    auth.AuthSkipper,
		}))
	}
	e.Use(middleware.RateLimit(rl))
	e.Use(middleware.Audit(logger, d.auditRecord))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "unit": cfg.UnitName})
	})
	if d.pool != nil {
		pool := d.pool
		e.GET("/health/db", db.HealthHandler(pool, func() *db.PoolStats { return db.GetPoolStats(pool) }))
	}
	e.GET("/metrics", collector.Handler())

	apiV1 := e.Group("/api/v1")
	admission.NewHandler(admissionSvc, schemas).RegisterRoutes(apiV1, nil)
	diabeticfoot.NewHandler(footSvc, schemas).RegisterRoutes(apiV1, nil)
	burns.NewHandler(burnSvc, schemas).RegisterRoutes(apiV1, nil)
	cme.NewHandler(cmeSvc, schemas).RegisterRoutes(apiV1.Group("", middleware.ETag(middleware.DefaultCacheConfig())), nil)

	reporter := reporting.NewReporter(cfg.HospitalName, cfg.UnitName)
	reporting.NewHandler(d.queries, admissionSvc, footSvc, burnSvc, reporter).RegisterRoutes(apiV1, nil)

	openapi.NewGenerator(cfg.UnitName+" API", version, "/", "/api/v1", e.Routes, schemas, requestBodies).
		RegisterRoutes(apiV1, nil)

	return e, nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	ctx := context.Background()
	pool, err := connect(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e, err := newServer(deps{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		queries:    pool,
		admissions: admission.NewAdmissionRepo(pool),
		discharges: admission.NewDischargeRepo(pool),
		tx:         db.PoolTxRunner{Pool: pool},
		footRepo:   diabeticfoot.NewAssessmentRepo(pool),
		burnRepo:   burns.NewAssessmentRepo(pool),
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to build server")
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("unit", cfg.UnitName).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
