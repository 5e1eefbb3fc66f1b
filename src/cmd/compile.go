package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"genko/src/jit"
	"genko/src/util"
)

var (
	compileFile string
	compileIR   string
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile and JIT-execute a Genko source file",
	RunE:  runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVar(&compileFile, "file", "", "path to a Genko source file (required)")
	compileCmd.Flags().StringVar(&compileIR, "ir", "", "if set, write the textual LLVM IR to this path instead of executing")
	_ = compileCmd.MarkFlagRequired("file")
}

func runCompile(_ *cobra.Command, _ []string) error {
	src, err := util.ReadSource(compileFile)
	if err != nil {
		return fmt.Errorf("could not read source: %w", err)
	}

	if compileIR != "" {
		text, err := jit.IRString(src)
		if err != nil {
			return err
		}
		return os.WriteFile(compileIR, []byte(text), 0644)
	}

	result, err := jit.Run(src)
	if err != nil {
		return err
	}
	fmt.Println(result)
	return nil
}
