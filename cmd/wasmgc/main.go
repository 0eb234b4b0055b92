// Command wasmgc is the CLI front-end over the gctypes/gcvalue/heap/executor/
// wasmbin core: a small suite of subcommands sharing the same flag/error
// conventions.
package main

import (
	"fmt"
	"os"

	"github.com/bvisness/wasmgc/utils"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "wasmgc",
		Short: "inspect and poke at Wasm GC modules",
	}
	root.AddCommand(newIsolateCmd())
	root.AddCommand(newTypecheckCmd())
	root.AddCommand(newEvalCmd())
	utils.Must(root.Execute())
}

func exitWithError(msg string, args ...any) {
	msg = fmt.Sprintf(msg, args...)
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", msg)
	os.Exit(1)
}
