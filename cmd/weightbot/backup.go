package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"weightbot/internal/adapter/telegram"
	"weightbot/internal/app"
	"weightbot/internal/backup"
	"weightbot/internal/config"
	"weightbot/internal/logging"
)

func newBackupCmd() *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create one backup now and send it to the admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFiles...)
			if err != nil {
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

			db, ok := snapshotter(st)
			if !ok {
				return fmt.Errorf("backup: store driver %q cannot be snapshotted", cfg.StoreDriver)
			}

			var sink backup.Sink
			if !local {
				if err := cfg.ValidateBot(); err != nil {
					return err
				}
				api, err := telegram.Connect(cfg.TelegramToken)
				if err != nil {
					return err
				}
				sink = telegram.NewDocumentSink(api, cfg.AdminID)
			}

			reports := app.NewReportService(st, st, st)
			art, err := newBackupJob(cfg, db, sink, log).
				WithCaption(telegram.BackupCaption(reports)).
				RunOnce(cmd.Context())
			if errors.Is(err, backup.ErrDelivery) {
				log.Error("backup created but not delivered", zap.String("path", art.Path), zap.Error(err))
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), art.Path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "only write the backup file, do not send it")
	return cmd
}
