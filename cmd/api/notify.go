package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iamdashante1/mb/internal/intake"
	"github.com/iamdashante1/mb/models"
)

func notifyTestCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "notify-test",
		Short: "Send a sample submission email to check the mail settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			k := models.Kind(strings.ToLower(kind))
			if !k.Valid() {
				return fmt.Errorf("unknown kind %q (use rsvp or tribute)", kind)
			}

			sample := &models.Submission{
				Kind:         k,
				Name:         "Test Guest",
				Email:        "guest@example.com",
				Relationship: "Friend",
				Message:      "This is a test notification.",
			}

			d := newDispatcher(cfg, logger)
			if err := d.Send(cmd.Context(), "[test] "+intake.Subject(sample), intake.Summary(sample)); err != nil {
				return fmt.Errorf("notification failed: %w", err)
			}

			fmt.Println("notification sent")

			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "rsvp", "submission kind (rsvp, tribute)")

	return cmd
}
