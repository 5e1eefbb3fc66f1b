package cmd

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"genko/src/jit"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactively evaluate Genko expressions",
	Long: `repl reads one line at a time, appends it to the program built up so
far, and re-lowers and JIT-executes the whole thing. A line is kept in the
accumulated program once it lowers successfully (so a "let"/"global"/"fn"
declared on one line is visible to every later line); only the printing of
a result is conditional: a line whose value is NaN (the encoding for "this
line produced no value", e.g. a bare declaration) stays silent, while a
line that evaluates to a real number prints it.`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, _ []string) error {
	scanner := bufio.NewScanner(os.Stdin)
	var history []string

	for {
		fmt.Fprint(cmd.OutOrStdout(), "genko> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		candidate := strings.Join(append(append([]string{}, history...), line), "\n")
		result, err := jit.Run(candidate)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			continue
		}

		history = append(history, line)
		if !math.IsNaN(result) {
			fmt.Fprintln(cmd.OutOrStdout(), result)
		}
	}
}
