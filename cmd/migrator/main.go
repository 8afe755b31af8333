package main

import (
	"flag"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/db"
	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/database"
)

var log = logrus.New()

func migrateScores(cfg config.Scores) (*migrate.Migrate, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		sqlDB, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		migrator, err := database.MigrateSQLite(sqlDB, db.Migrations, db.SQLiteDir)
		if err != nil {
			sqlDB.Close()
		}
		return migrator, err
	default:
		url, err := config.DatabaseURL()
		if err != nil {
			return nil, err
		}
		return database.MigratePostgres(url, db.Migrations, db.PostgresDir)
	}
}

func main() {
	configPath := flag.String("config", "", "config file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("unable to load config: ", err)
	}
	if err := cfg.SetupLogging(log, database.Log); err != nil {
		log.Fatal("unable to set up logging: ", err)
	}

	if cfg.Scores.Driver == config.DriverMemory {
		log.Info("memory score store has no schema to migrate")
		return
	}

	migrator, err := migrateScores(cfg.Scores)
	if err != nil {
		log.WithError(err).Error("failed to migrate score store")
		os.Exit(1)
	}
	defer migrator.Close()

	version, dirty, err := migrator.Version()
	if err != nil {
		log.WithError(err).Error("failed to check migration version")
		return
	}
	log.WithFields(logrus.Fields{
		"driver":  cfg.Scores.Driver,
		"version": version,
		"dirty":   dirty,
	}).Info("migration successful")
}
