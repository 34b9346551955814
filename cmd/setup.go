package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/mysubs/internal/shared"
)

// Setup writes config.toml from the embedded template when missing and, for the sqlite store,
// initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("config file found", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		cfg, err := shared.LoadConfig(configPath)
		if err != nil {
			return err
		}
		r.config = cfg
		r.writePlain("✓ Created %s\n", configPath)
	}

	if r.config.Store.Backend == "sqlite" {
		r.logger.Info("initializing database", "path", r.config.Database.Path)
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()
		r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
	}

	if err := r.config.Validate(); err != nil {
		r.writePlainln("Next steps:")
		r.writePlain("1. Set google.client_id in %s (or MYSUBS_CLIENT_ID in .env)\n", configPath)
		r.writePlain("2. Run 'mysubs auth login' to sign in\n")
		return nil
	}
	return r.writePlain("Run 'mysubs auth login' to sign in.\n")
}
