package main

import (
	"fmt"

	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/db"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "manage the database schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(*cli.Context) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					return migrateUp(cfg)
				},
			},
			{
				Name:  "down",
				Usage: "roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
				},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := db.MigrateDown(cfg.DatabaseURL, c.Int("steps")); err != nil {
						return fmt.Errorf("db.MigrateDown: %w", err)
					}
					log.WithField("steps", c.Int("steps")).Info("migrations rolled back")
					return nil
				},
			},
		},
	}
}

func migrateUp(cfg config.Config) error {
	if err := db.MigrateUp(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("db.MigrateUp: %w", err)
	}
	log.Info("migrations applied")
	return nil
}
