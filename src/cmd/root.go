// Package cmd wires the cobra command tree for the genko binary: a
// one-shot `compile` subcommand and an interactive `repl` subcommand,
// following the root-command-plus-verb-subcommand layout of
// cmd/dwscript/cmd in CWBudde-go-dws.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "genko",
	Short: "Genko JIT compiler",
	Long: `genko parses, lowers and JIT-compiles the Genko expression language,
an expression-oriented scripting language with a single numeric type
(double-precision float), into LLVM IR executed in-process.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
