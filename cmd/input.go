package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	json "github.com/json-iterator/go"
)

// appFs is the filesystem batch files are read from; tests swap it.
var appFs = afero.NewOsFs()

// maxInputBytes bounds a batch document.
const maxInputBytes = 1 << 20

// errActionsFailed marks a run that completed with failed actions.
var errActionsFailed = errors.New("one or more actions failed")

// readBatchInput reads the batch from the named file, or from stdin when the
// argument is "-" or absent.
func readBatchInput(cmd *cobra.Command, args []string) ([]byte, error) {
	var (
		r    io.Reader
		name = "-"
	)
	if len(args) > 0 {
		name = args[0]
	}
	if name == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := appFs.Open(name)
		if err != nil {
			return nil, fmt.Errorf("failed to open batch file: %w", err)
		}
		defer f.Close()
		r = f
	}

	raw, err := io.ReadAll(io.LimitReader(r, maxInputBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read batch: %w", err)
	}
	if len(raw) > maxInputBytes {
		return nil, fmt.Errorf("batch is larger than %d bytes", maxInputBytes)
	}
	return raw, nil
}

// jsonAPI sorts map keys so output is stable.
var jsonAPI = json.ConfigCompatibleWithStandardLibrary

// writeJSON prints v indented on the command's stdout.
func writeJSON(cmd *cobra.Command, v interface{}) error {
	out, err := jsonAPI.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

// exitCode is 2 for a batch that ran with failures and 1 for anything else.
func exitCode(err error) int {
	if errors.Is(err, errActionsFailed) {
		return 2
	}
	return 1
}
