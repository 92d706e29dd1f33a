package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cppla/commentbox/config"
	"github.com/cppla/commentbox/models"
)

// NewMigrateCmd creates or extends the users and comments tables and exits.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := config.OpenDatabase(cfg, logger)
	if err != nil {
		return err
	}
	if err := config.Migrate(db, models.All()...); err != nil {
		return err
	}
	logger.Info("schema migrated")
	return nil
}
