package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iamdashante1/mb/internal/store"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create submission tables / collections and their indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			s, err := store.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			if err := s.Migrate(cmd.Context()); err != nil {
				return err
			}

			logger.Info("migration complete", zap.String("driver", cfg.DBDriver))

			return nil
		},
	}
}
