package app

import (
	"context"
	"fmt"

	"github.com/vancomm/minesweeper/db"
	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/database"
	"github.com/vancomm/minesweeper/internal/repository"
)

// OpenScores connects the configured score store and brings its schema up
// to date.
func OpenScores(ctx context.Context, c config.Scores) (repository.Scores, error) {
	switch c.Driver {
	case config.DriverMemory:
		return repository.NewMemory(), nil

	case config.DriverSQLite:
		sqlDB, err := database.OpenSQLite(c.SQLitePath)
		if err != nil {
			return nil, err
		}
		if _, err := database.MigrateSQLite(sqlDB, db.Migrations, db.SQLiteDir); err != nil {
			sqlDB.Close()
			return nil, err
		}
		Log.WithField("path", c.SQLitePath).Info("using sqlite score store")
		return repository.NewSQLite(sqlDB), nil

	case config.DriverPostgres:
		url, err := config.DatabaseURL()
		if err != nil {
			return nil, err
		}
		if _, err := database.MigratePostgres(url, db.Migrations, db.PostgresDir); err != nil {
			return nil, err
		}
		pool, err := database.ConnectPostgres(ctx)
		if err != nil {
			return nil, err
		}
		Log.Info("using postgres score store")
		return repository.NewPostgres(pool), nil
	}
	return nil, fmt.Errorf("unknown score driver %q", c.Driver)
}
