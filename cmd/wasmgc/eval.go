package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newEvalCmd drives the tiny GC-operation script language in evalscript.go
// against a standalone script file. It never loads a real module: the
// script declares its own types and data segments inline, which is enough
// to reproduce the S1-S6 literal scenarios (spec.md §8) from the command
// line instead of from a Go test.
func newEvalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <script>",
		Short: "run a small GC-operation script (struct.new, array.new_data, ref.test, ...)",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				cmd.Usage()
				os.Exit(1)
			}
			src, err := os.ReadFile(args[0])
			if err != nil {
				exitWithError("could not read script %s: %v", args[0], err)
			}
			if err := runScript(string(src), func(line string) { fmt.Println(line) }); err != nil {
				exitWithError("%v", err)
			}
		},
	}
}
