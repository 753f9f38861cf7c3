package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/deskpilot/internal/action"
	"github.com/xkilldash9x/deskpilot/internal/observability"
)

// decodeFailure is one rejected entry in command output.
type decodeFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// validateOutput is what validate prints.
type validateOutput struct {
	Valid   bool            `json:"valid"`
	Kinds   []action.Kind   `json:"kinds"`
	Errors  []decodeFailure `json:"errors,omitempty"`
	Problem string          `json:"problem,omitempty"`
}

func toFailures(entryErrs []*action.EntryError) []decodeFailure {
	out := make([]decodeFailure, 0, len(entryErrs))
	for _, ee := range entryErrs {
		out = append(out, decodeFailure{Index: ee.Index, Error: ee.Err.Error()})
	}
	return out
}

func newValidateCmd() *cobra.Command {
	var opts action.DecodeOptions

	cmd := &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Decode a batch and report problems without executing it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readBatchInput(cmd, args)
			if err != nil {
				return err
			}

			decoder := action.NewDecoder(observability.GetLogger(), opts)
			batch, entryErrs, err := decoder.DecodeBatch(raw)
			out := validateOutput{
				Valid:  err == nil && len(entryErrs) == 0,
				Kinds:  batch.Kinds(),
				Errors: toFailures(entryErrs),
			}
			if out.Kinds == nil {
				out.Kinds = []action.Kind{}
			}
			if err != nil {
				out.Problem = err.Error()
			}
			if werr := writeJSON(cmd, out); werr != nil {
				return werr
			}
			if !out.Valid {
				return errActionsFailed
			}
			return nil
		},
	}
	addDecodeFlags(cmd, &opts)
	return cmd
}

func addDecodeFlags(cmd *cobra.Command, opts *action.DecodeOptions) {
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Reject the whole batch if any entry fails to decode")
	cmd.Flags().BoolVar(&opts.Truncate, "truncate", false, "Keep the first 10 entries of an oversized batch instead of rejecting it")
}
