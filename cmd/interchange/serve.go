package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/interchange/internal/config"
	"github.com/ehr/interchange/internal/platform/audit"
	"github.com/ehr/interchange/internal/platform/auth"
	"github.com/ehr/interchange/internal/platform/batch"
	"github.com/ehr/interchange/internal/platform/cache"
	"github.com/ehr/interchange/internal/platform/convert"
	"github.com/ehr/interchange/internal/platform/db"
	"github.com/ehr/interchange/internal/platform/detect"
	"github.com/ehr/interchange/internal/platform/export"
	"github.com/ehr/interchange/internal/platform/hl7v2"
	"github.com/ehr/interchange/internal/platform/middleware"
	"github.com/ehr/interchange/internal/platform/openapi"
	"github.com/ehr/interchange/internal/platform/telemetry"
)

const auditCapacity = 1000

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the optional MLLP listener",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().Bool("print-token", false, "Print a 24h token with every scope on startup (development only)")
	cmd.Flags().String("mllp-out", "", "Directory for sheets converted from MLLP messages")
	cmd.Flags().String("mllp-format", "ndjson", "Output format for --mllp-out")
	return cmd
}

// serverDeps are the collaborators newServer wires into the router.
type serverDeps struct {
	Converter *convert.Converter
	Audit     audit.Log
	DB        db.Pinger
	Metrics   *telemetry.Metrics
	Logger    zerolog.Logger
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stdout)
	for _, w := range cfg.Warnings() {
		logger.Warn().Msg(w)
	}

	deps := serverDeps{
		Converter: convert.NewConverter(cache.NewResults[*convert.Result](cfg.CacheTTL), logger),
		Audit:     audit.NewMemory(auditCapacity),
		Metrics:   telemetry.New(),
		Logger:    logger,
	}

	ctx := context.Background()
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, poolConfig(cfg))
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		logger.Info().Msg("connected to database")
		deps.Audit = audit.NewStore(pool)
		deps.DB = pool
	}
	deps.Audit = deps.Metrics.Observe(deps.Audit)

	e, err := newServer(cfg, deps)
	if err != nil {
		return err
	}

	if printToken, _ := cmd.Flags().GetBool("print-token"); printToken {
		if cfg.IsProduction() || !cfg.AuthEnabled() {
			return fmt.Errorf("--print-token needs AUTH_SIGNING_KEY outside production")
		}
		token, err := auth.IssueToken(jwtConfig(cfg), "dev", 24*time.Hour, "*")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), token)
	}

	if cfg.MLLPAddr != "" {
		mllpOut, _ := cmd.Flags().GetString("mllp-out")
		mllpFormat, _ := cmd.Flags().GetString("mllp-format")
		outFormat, err := export.ParseFormat(mllpFormat)
		if err != nil {
			return err
		}
		sink := mllpSink(deps.Audit, mllpOut, outFormat, logger)
		listener := hl7v2.NewListener(cfg.MLLPAddr, sink, logger)
		if err := listener.Start(); err != nil {
			return fmt.Errorf("start MLLP listener: %w", err)
		}
		defer listener.Close()
		logger.Info().Str("addr", listener.Addr()).Msg("MLLP listener started")
	}

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("version", version).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer builds the router: global middleware, health and metrics
// endpoints and the conversion API under /api/v1.
func newServer(cfg *config.Config, deps serverDeps) (*echo.Echo, error) {
	maxBytes, err := cfg.MaxUploadBytes()
	if err != nil {
		return nil, err
	}
	logger := deps.Logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = jsonErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware())
	}
	e.Use(middleware.SecurityHeaders())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: cfg.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost},
			AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		}))
	}
	e.Use(middleware.BodyLimit(maxBytes))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout, "/health"))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	if cfg.AuthEnabled() {
		jwtCfg := jwtConfig(cfg)
		jwtCfg.Skipper = auth.AuthSkipper
		e.Use(auth.JWTMiddleware(jwtCfg))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(deps.DB))
	if deps.Metrics != nil {
		e.GET("/metrics", deps.Metrics.Handler())
	}

	runner := batch.NewRunner(deps.Converter.Func, cfg.BatchConcurrency, logger)
	handler := convert.NewHandler(deps.Converter, runner, deps.Audit, maxBytes, logger)
	apiV1 := e.Group("/api/v1")
	handler.RegisterRoutes(apiV1)
	openapi.NewGenerator(version, "/api/v1").RegisterRoutes(apiV1)

	return e, nil
}

func jwtConfig(cfg *config.Config) auth.JWTConfig {
	return auth.JWTConfig{
		Issuer:     cfg.AuthIssuer,
		Audience:   cfg.AuthAudience,
		SigningKey: []byte(cfg.AuthSigningKey),
	}
}

// jsonErrorHandler renders every error as {"error": message}.
func jsonErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, msg := http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			msg = fmt.Sprint(he.Message)
			if m, ok := he.Message.(map[string]string); ok && m["error"] != "" {
				msg = m["error"]
			}
		} else {
			logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, map[string]string{"error": msg})
		}
		if err != nil {
			logger.Error().Err(err).Msg("write error response")
		}
	}
}

// mllpSink records each inbound message in the audit log and, when dir is
// set, writes its sheets to dir/mllp_<control id>.<ext>. Messages that yield
// no sheets are rejected so the sender receives AE.
func mllpSink(log audit.Log, dir string, format export.Format, logger zerolog.Logger) hl7v2.Sink {
	return func(ctx context.Context, in hl7v2.Inbound) error {
		msg := in.Message
		entry := audit.NewEntry(msg.ControlID, "mllp:"+msg.SendingApp, in.Raw)
		entry.Format = string(detect.HL7v2)
		entry.Sheets = len(in.Sheets)
		for _, s := range in.Sheets {
			entry.Rows += s.Len()
		}

		var sinkErr error
		switch {
		case len(in.Sheets) == 0:
			sinkErr = &convert.EmptyResultError{Format: detect.HL7v2}
		case dir != "":
			base := "mllp_" + msg.ControlID
			if msg.ControlID == "" {
				base = "mllp_" + entry.ID.String()
			}
			if _, err := export.WriteFiles(dir, base, format, in.Sheets); err != nil {
				sinkErr = fmt.Errorf("write sheets: %w", err)
			}
		}
		if sinkErr != nil {
			entry.Error = sinkErr.Error()
		}

		if err := log.Record(ctx, entry); err != nil {
			logger.Error().Err(err).Str("control_id", msg.ControlID).Msg("failed to record MLLP conversion")
		}

		event := logger.Info()
		if sinkErr != nil {
			event = logger.Warn().Err(sinkErr)
		}
		event.Str("control_id", msg.ControlID).
			Str("type", msg.Type).
			Str("remote", in.Remote).
			Int("sheets", entry.Sheets).
			Int("rows", entry.Rows).
			Msg("MLLP message converted")
		return sinkErr
	}
}
