package db

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fatflowers/licensing/internal/models"
	cfgpkg "github.com/fatflowers/licensing/pkg/config"
	"github.com/fatflowers/licensing/pkg/gormlog"
)

func dialector(c cfgpkg.DBConfig) (gorm.Dialector, error) {
	switch c.Driver {
	case cfgpkg.DBDriverPostgres, "":
		return postgres.Open(c.DSN), nil
	case cfgpkg.DBDriverSQLite:
		return sqlite.Open(c.DSN), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
}

// NewDB opens the configured database and sizes its connection pool.
func NewDB(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*gorm.DB, error) {
	c := cfg.Database
	if c.DSN == "" {
		return nil, fmt.Errorf("database dsn is empty: %w", gorm.ErrInvalidDB)
	}
	d, err := dialector(c)
	if err != nil {
		return nil, err
	}
	gl, err := gormlog.New(l, gormlog.Options{Level: c.LogLevel, SlowThreshold: c.SlowThreshold})
	if err != nil {
		return nil, err
	}
	gdb, err := gorm.Open(d, &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Driver, err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if c.Driver == cfgpkg.DBDriverSQLite {
		// sqlite has a single writer; more connections only produce SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		if c.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(c.MaxOpenConns)
		}
		if c.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(c.MaxIdleConns)
		}
		sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime)
	}
	l.Infow("db_connected", "driver", d.Name(), "max_open", sqlDB.Stats().MaxOpenConnections)
	return gdb, nil
}

var Module = fx.Options(
	fx.Provide(NewDB),
	fx.Invoke(AutoMigrate),
	fx.Invoke(registerDBClose),
)

// Models lists every table owned by the licensing service.
func Models() []any {
	return []any{
		&models.Product{},
		&models.Key{},
		&models.KeyLog{},
		&models.Activation{},
		&models.Release{},
		&models.Upgrade{},
		&models.Renewal{},
		&models.Transaction{},
		&models.Subscription{},
		&models.PaymentNotificationLog{},
	}
}

func AutoMigrate(l *zap.SugaredLogger, gdb *gorm.DB) error {
	tables := Models()
	if err := gdb.AutoMigrate(tables...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	l.Infow("db_migrated", "tables", len(tables))
	return nil
}

func registerDBClose(lc fx.Lifecycle, l *zap.SugaredLogger, gdb *gorm.DB) {
	lc.Append(fx.StopHook(func(context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		l.Infow("db_closing", "in_use", sqlDB.Stats().InUse)
		return sqlDB.Close()
	}))
}
