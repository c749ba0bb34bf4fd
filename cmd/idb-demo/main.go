package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"idb/config"
	"idb/database"
	"idb/shared/logger"
	"idb/statement"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Error("failed to load configuration", logger.Err(err))
		os.Exit(1)
	}

	logger.SetGlobalLogger(logger.NewZapLogger(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	}))

	if err := run(cfg); err != nil {
		logger.Error("demo failed", logger.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	st, err := statement.New(ctx, db)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.StartTransaction(); err != nil {
		return err
	}

	if err := st.Prepare(ctx, "CREATE TABLE IF NOT EXISTS idb_demo (id SERIAL PRIMARY KEY, name TEXT NOT NULL)"); err != nil {
		return err
	}
	if _, err := st.ExecuteUpdate(ctx); err != nil {
		return err
	}

	if err := st.Prepare(ctx, "INSERT INTO idb_demo (name) VALUES ($1)"); err != nil {
		return err
	}
	n, err := st.ExecuteUpdate(ctx, "demo")
	if err != nil {
		return err
	}
	logger.Info("inserted rows", logger.Int64("affected", n))

	if err := st.Prepare(ctx, "SELECT id, name FROM idb_demo ORDER BY id"); err != nil {
		return err
	}
	if err := st.Execute(ctx); err != nil {
		return err
	}

	rows, err := st.Results()
	if err != nil {
		return err
	}
	for _, row := range rows {
		id, _ := row.Int64("id")
		name, _ := row.String("name")
		fmt.Printf("%d\t%s\n", id, name)
	}

	st.Commit()
	return nil
}
