package system

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/internal/service/notification"
	"github.com/Alijeyrad/sapan_backend/pkg/database"
	"github.com/Alijeyrad/sapan_backend/pkg/email"
)

func NewRemindCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Email reminders for sessions starting in about a day",
		Long: `Sends the reminder email to both parties of every confirmed booking
that starts within an hour of the configured lead time and has not been
reminded yet. Meant to run from cron, e.g. hourly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, flush, err := readConfig(cmd)
			if err != nil {
				return err
			}
			defer flush()

			loc, err := time.LoadLocation(cfg.Booking.DefaultTimezone)
			if err != nil {
				return err
			}
			sender, err := email.NewFromCentral(cfg.Email)
			if err != nil {
				return fmt.Errorf("failed to create email client: %w", err)
			}
			if !sender.Enabled() {
				slog.Warn("email disabled; reminders will be marked sent without delivery")
			}

			drv, err := database.NewDriver(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			client := repo.NewClient(drv)
			defer client.Close()

			mailer := notification.NewMailer(client.Bookings, sender, loc)
			lead := time.Duration(cfg.Booking.ReminderLeadHours) * time.Hour
			reminder := notification.NewReminder(client.Bookings, mailer, lead)

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			sent, err := reminder.Run(ctx)
			fmt.Printf("Reminders sent: %d\n", sent)
			return err
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Maximum run time")

	return cmd
}
