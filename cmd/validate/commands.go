package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/contact-verifier/internal/app"
	"github.com/contact-verifier/internal/config"
	"github.com/contact-verifier/internal/domain"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "run [email|phone|all]",
		Short:     "Run one bulk validation pass",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"email", "phone", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "all"
			if len(args) == 1 {
				target = args[0]
			}
			return withApp(cmd, func(ctx context.Context, a *app.App, hostname string) error {
				if target == "all" {
					reports, err := a.Validation.ValidateAll(ctx, hostname)
					printReports(cmd, reports...)
					return err
				}
				ch, err := domain.ParseChannel(target)
				if err != nil {
					return err
				}
				report, err := a.Validation.ValidateBulk(ctx, ch, hostname)
				printReports(cmd, report)
				return err
			})
		},
	}
}

func singleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "single",
		Short: "Verify one email or phone",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			phone, _ := cmd.Flags().GetString("phone")
			ch, ident := domain.ChannelEmail, email
			if ident == "" {
				ch, ident = domain.ChannelPhone, phone
			}
			if ident == "" {
				return errors.New("one of --email or --phone is required")
			}
			return withApp(cmd, func(ctx context.Context, a *app.App, hostname string) error {
				return a.Validation.ValidateSingle(ctx, ch, ident, hostname)
			})
		},
	}
	cmd.Flags().String("email", "", "email to verify")
	cmd.Flags().String("phone", "", "phone to verify")
	cmd.MarkFlagsMutuallyExclusive("email", "phone")
	return cmd
}

// withApp loads config, wires the pipeline and runs fn until it returns or a signal arrives.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, hostname string) error) error {
	cfg := config.Load()
	hostname, _ := cmd.Flags().GetString("hostname")
	if hostname == "" {
		hostname = cfg.Validation.Hostname
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	return fn(ctx, a, hostname)
}

func printReports(cmd *cobra.Command, reports ...*domain.RunReport) {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	for _, r := range reports {
		if r != nil {
			_ = enc.Encode(r)
		}
	}
}
