package database

import (
	"blog-admin/internal/config"
	"blog-admin/internal/logging"
	"blog-admin/internal/models"
	"fmt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"net/url"
)

func InitDatabase(c *config.Configuration, l logging.Logger) (*gorm.DB, error) {
	l.LogInfof(logging.GetLogTypeInitialization(), "Initializing Database (%s)", c.Database.Driver)

	dialector, err := dialectorFor(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logging.InitGormLogger(c),
		// maps unique violations to gorm.ErrDuplicatedKey for both drivers
		TranslateError: true,
	})
	if err != nil {
		l.LogErrorf(nil, "error initializing database: %v", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		l.LogErrorf(nil, "error setting connection properties on db conn pool")
		return nil, err
	}
	sqlDB.SetMaxIdleConns(c.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(c.Database.ConnMaxLifetime.Duration)

	l.LogDebug(nil, "connected to Database")

	if err = Migrate(db); err != nil {
		l.LogError(nil, err)
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the tables of all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return fmt.Errorf("error auto migrating models.User: %w", err)
	}

	if err := db.AutoMigrate(&models.Post{}); err != nil {
		return fmt.Errorf("error auto migrating models.Post: %w", err)
	}

	return nil
}

func dialectorFor(c *config.Configuration) (gorm.Dialector, error) {
	switch c.Database.Driver {
	case config.DriverPostgres:
		dsn := url.URL{
			User:     url.UserPassword(c.Database.Username, c.Database.Password),
			Scheme:   "postgres",
			Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
			Path:     c.Database.DatabaseName,
			RawQuery: (&url.Values{"sslmode": []string{"disable"}}).Encode(),
		}
		return postgres.Open(dsn.String()), nil
	case config.DriverSqlite:
		if len(c.Database.SqlitePath) == 0 {
			return nil, fmt.Errorf("database driver %q requires SqlitePath", c.Database.Driver)
		}
		return sqlite.Open(c.Database.SqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
}
