package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	adapthttp "weightbot/internal/adapter/http"
	"weightbot/internal/adapter/telegram"
	"weightbot/internal/app"
	"weightbot/internal/backup"
	"weightbot/internal/config"
	"weightbot/internal/logging"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, the backup job and the admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	log.Info("store opened", zap.String("driver", cfg.StoreDriver))

	api, err := telegram.Connect(cfg.TelegramToken)
	if err != nil {
		return err
	}
	log.Info("connected to telegram",
		zap.String("token", cfg.TokenPrefix()),
		zap.String("bot", api.Self.UserName),
		zap.Int64("admin_id", cfg.AdminID))

	measurements := app.NewMeasurementService(st, st)
	reports := app.NewReportService(st, st, st)

	var (
		job     *backup.Job
		backups telegram.Backups
	)
	if db, ok := snapshotter(st); ok {
		job = newBackupJob(cfg, db, telegram.NewDocumentSink(api, cfg.AdminID), log).
			WithCaption(telegram.BackupCaption(reports))
		backups = job
	} else {
		log.Warn("backups disabled for this store driver", zap.String("driver", cfg.StoreDriver))
	}

	bot := telegram.New(api, measurements, reports, backups, cfg.AdminID, log)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var admin *adapthttp.Server
	if cfg.HTTPAddr != "" {
		oidcCfg, err := adapthttp.NewOIDCConfig(ctx, cfg.OIDC)
		if err != nil {
			return err
		}
		auth := app.NewAuthService(st, cfg.AdminPasswordHash, cfg.AdminEmails)
		admin = adapthttp.New(reports, app.NewChartsService(st), auth, log.Named("http")).WithOIDC(oidcCfg)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(ctx) })
	if job != nil {
		g.Go(func() error { return job.Run(ctx) })
	}
	if admin != nil {
		g.Go(func() error { return serveHTTP(ctx, cfg.HTTPAddr, admin.Handler(), log) })
	}

	err = g.Wait()
	log.Info("shutdown complete")
	return err
}

func serveHTTP(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	}()

	log.Info("admin api listening", zap.String("addr", addr))
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
