package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-comercial/internal/app"
)

// ExitError carries a non-zero exit code out of a command.
type ExitError struct{ Code int }

func (e ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// NewQuoteCommand builds `quote`.
func NewQuoteCommand() *cobra.Command {
	opts := QuoteOptions{}
	cmd := &cobra.Command{
		Use:   "quote [discount...]",
		Short: "Price a single line through the discount cascade",
		Long:  `Apply up to eight cascaded percentage discounts to a gross or promotional price. Blank or unparseable discounts are skipped; a comma is accepted as decimal separator.`,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Discounts = args
			opts.Stdout = cmd.OutOrStdout()
			opts.Stderr = cmd.ErrOrStderr()
			if code := QuoteCommand(opts); code != 0 {
				return ExitError{Code: code}
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&opts.Gross, "gross", 0, "Gross unit price")
	cmd.Flags().Float64Var(&opts.Promo, "promo", 0, "Promotional price; zero or negative means none")
	cmd.Flags().StringVar(&opts.Locale, "locale", "pt-BR", "BCP 47 locale for the display value")
	cmd.Flags().BoolVar(&opts.ClampNegative, "clamp", false, "Clamp negative results to zero")
	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "Print JSON instead of text")
	return cmd
}

// NewJobsCommand builds `jobs trigger` and `jobs stats`.
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and trigger background jobs",
	}

	trigger := &cobra.Command{
		Use:   "warmup [actor...]",
		Short: "Enqueue a permission cache warmup",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobsCLI, err := jobsFromEnv()
			if err != nil {
				return err
			}
			defer func() { _ = jobsCLI.Close() }()
			info, err := jobsCLI.TriggerWarmup(cmd.Context(), args)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s on %s\n", info.ID, info.Queue)
			return nil
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print queue statistics as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobsCLI, err := jobsFromEnv()
			if err != nil {
				return err
			}
			defer func() { _ = jobsCLI.Close() }()
			s, err := jobsCLI.InspectQueue(cmd.Context())
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(s)
		},
	}

	cmd.AddCommand(trigger, stats)
	return cmd
}

func jobsFromEnv() (*JobsCLI, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewJobsCLI(cfg.RedisAddr), nil
}
