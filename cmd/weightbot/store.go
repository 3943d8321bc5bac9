package main

import (
	"go.uber.org/zap"

	"weightbot/internal/adapter/memory"
	"weightbot/internal/adapter/sqlstore"
	"weightbot/internal/backup"
	"weightbot/internal/config"
	"weightbot/internal/domain"
)

type store interface {
	domain.UserRepository
	domain.MeasurementRepository
	domain.ReportRepository
	domain.SessionRepository
	Close() error
}

func openStore(cfg *config.Config) (store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		return memory.New(), nil
	}

	var (
		db  *sqlstore.DB
		err error
	)
	if cfg.StoreDriver == config.DriverPostgres {
		db, err = sqlstore.Open(sqlstore.DriverPostgres, cfg.DatabaseURL)
	} else {
		db, err = sqlstore.OpenSQLite(cfg.DatabasePath)
	}
	if err != nil {
		return nil, err
	}
	return db, nil
}

// snapshotter returns the store as a backup source when it is a SQLite file.
func snapshotter(st store) (*sqlstore.DB, bool) {
	db, ok := st.(*sqlstore.DB)
	if !ok || db.Driver() != sqlstore.DriverSQLite {
		return nil, false
	}
	return db, true
}

func newBackupJob(cfg *config.Config, db *sqlstore.DB, sink backup.Sink, log *zap.Logger) *backup.Job {
	return backup.New(backup.Config{
		Interval: cfg.Backup.Interval,
		Dir:      cfg.Backup.Dir,
		Keep:     cfg.Backup.Keep,
		Compress: cfg.Backup.Compress,
	}, db, sink, log)
}
