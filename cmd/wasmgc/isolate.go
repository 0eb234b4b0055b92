package main

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bvisness/wasmgc/isolate"
	"github.com/bvisness/wasmgc/utils"
	"github.com/spf13/cobra"
)

// newIsolateCmd wires the isolate subcommand: -f/--funcs and -o/--out
// flags, with "-" naming stdin for the input file and stdout for the output.
func newIsolateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "isolate <file>",
		Short: "report on a module's sections, round-tripping the type section",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				cmd.Usage()
				os.Exit(1)
			}
			filename := args[0]

			var wasm io.Reader
			if filename == "-" {
				wasm = os.Stdin
			} else {
				var err error
				wasm, err = os.Open(filename)
				if err != nil {
					err := err.(*os.PathError)
					exitWithError("could not open file %s: %v", err.Path, err.Err)
				}
			}

			var out io.Writer
			outname := utils.Must1(cmd.Flags().GetString("out"))
			if outname == "-" {
				out = os.Stdout
			} else {
				var err error
				out, err = os.Create(outname)
				if err != nil {
					err := err.(*os.PathError)
					exitWithError("could not open output file %s: %v", err.Path, err.Err)
				}
			}

			var funcs []int
			funcsFlag := utils.Must1(cmd.Flags().GetString("funcs"))
			if funcsFlag != "" {
				for _, idxStr := range strings.Split(funcsFlag, ",") {
					idx, err := strconv.Atoi(idxStr)
					if err != nil {
						exitWithError("invalid function index %s", idxStr)
					}
					funcs = append(funcs, idx)
				}
			}

			if err := isolate.Isolate(wasm, out, funcs); err != nil {
				exitWithError("%v", err)
			}
		},
	}
	cmd.Flags().StringP("funcs", "f", "", "The function indices to isolate, separated by commas.")
	cmd.Flags().StringP("out", "o", "-", "The file to write output to. Defaults to stdout.")
	return cmd
}
