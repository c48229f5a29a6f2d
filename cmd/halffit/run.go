// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wundergraph/go-halffit"
	"github.com/wundergraph/go-halffit/internal/script"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run [script|-]",
		Short: "Run an allocator script against a fresh arena",
		Long: `The run command executes a script, one command per line:

  reserve NAME BYTES   release NAME   dump   bins   stats   check   reset

Lines starting with # are comments. Without an argument, or with -, the
script is read from standard input.

Example:
  halffit run scenario.txt
  printf 'reserve a 3250\ndump\n' | halffit run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open script: %w", err)
				}
				defer f.Close()
				src = f
			}

			h := halffit.New(halffit.WithLogger(a.log))
			in := script.NewInterpreter(halffit.NewConcurrent(h), cmd.OutOrStdout())
			if err := in.Run(src); err != nil {
				return err
			}
			a.log.Debug("script finished", "reserved_bytes", h.Len(), "peak_bytes", h.Peak())
			return nil
		},
	}
}
