package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/deskpilot/internal/action"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [kind]",
		Short: "Print the JSON Schema for one action kind, or all of them",
		Args:  cobra.MaximumNArgs(1),
		// Schemas are embedded; no config is needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				doc, err := action.Schema(action.Kind(args[0]))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bytes.TrimSpace(doc)))
				return err
			}

			all := action.Schemas()
			docs := make(map[string]json.RawMessage, len(all))
			for k, doc := range all {
				docs[string(k)] = doc
			}
			return writeJSON(cmd, docs)
		},
	}
}
