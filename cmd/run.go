package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/action"
	"github.com/xkilldash9x/deskpilot/internal/executor"
	"github.com/xkilldash9x/deskpilot/internal/observability"
)

// shutdownTimeout bounds teardown after a batch, including the dismissal of
// highlights still on screen.
const shutdownTimeout = 5 * time.Second

// runOutput is the execution report plus any entries the decoder dropped.
type runOutput struct {
	*executor.Report
	DecodeErrors []decodeFailure `json:"decode_errors,omitempty"`
}

type runFlags struct {
	device      string
	strategy    string
	noHighlight bool
	decode      action.DecodeOptions
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [file|-]",
		Short: "Decode a batch and execute it on the configured device",
		Long: `run reads an action batch (a JSON array, or an object with an "action"
or "actions" array) from a file or stdin, executes it in order and prints
the per-action report as JSON. Entries that fail to decode are reported and
skipped unless --strict is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if flags.device != "" {
				cfg.SetDeviceKind(flags.device)
			}
			if flags.strategy != "" {
				cfg.SetCoordinateStrategy(flags.strategy)
			}
			if flags.noHighlight {
				cfg.SetAffordanceEnabled(false)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}

			raw, err := readBatchInput(cmd, args)
			if err != nil {
				return err
			}

			logger := observability.GetLogger()
			batch, entryErrs, err := action.NewDecoder(logger, flags.decode).DecodeBatch(raw)
			if err != nil {
				return fmt.Errorf("failed to decode batch: %w", err)
			}

			ctx := cmd.Context()
			comps, err := initializeComponents(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				comps.Shutdown(shutdownCtx)
			}()

			report, err := comps.Dispatcher.Execute(ctx, batch)
			if err != nil {
				return err
			}
			// Report indexes against the submitted payload, the same
			// numbering decode_errors uses.
			sources := action.SourceIndexes(len(batch), entryErrs)
			for i := range report.Results {
				report.Results[i].Index = sources[i]
			}
			logger.Info("Batch executed.",
				zap.String("batch_id", report.BatchID),
				zap.Int("actions", len(report.Results)),
				zap.Int("failed", report.Failed()),
				zap.Int("undecodable", len(entryErrs)),
				zap.Bool("done", report.Done))

			if err := writeJSON(cmd, runOutput{Report: report, DecodeErrors: toFailures(entryErrs)}); err != nil {
				return err
			}
			if report.Failed() > 0 || len(entryErrs) > 0 {
				return errActionsFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.device, "device", "", "Input device: dryrun, cdp or desktop (overrides config)")
	cmd.Flags().StringVar(&flags.strategy, "strategy", "", "Coordinate strategy: pixel_first or thousandths (overrides config)")
	cmd.Flags().BoolVar(&flags.noHighlight, "no-highlight", false, "Disable the click highlight ring")
	addDecodeFlags(cmd, &flags.decode)
	return cmd
}
