package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dr8co/sema/bitcode"
	"github.com/dr8co/sema/cell"
	"github.com/dr8co/sema/interp"
)

var flagOutput string

// runCmd evaluates a source file and prints the residual value.
var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Evaluate a source file and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, _, err := evalFile(args[0], false)
		if err != nil {
			return err
		}
		fmt.Println(result.Inspect())
		return nil
	},
}

// evalCmd evaluates an expression given on the command line.
var evalCmd = &cobra.Command{
	Use:   "eval EXPR",
	Short: "Evaluate an expression and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session := interp.NewSession()
		result, err := session.Eval(args[0])
		if err != nil {
			return err
		}
		fmt.Println(result.Inspect())
		return nil
	},
}

// assembleCmd evaluates a source file, assembles the resulting monad, and
// writes the packed bytes.
var assembleCmd = &cobra.Command{
	Use:   "assemble FILE",
	Short: "Assemble a source file into a binary artifact",
	Long: `Assemble evaluates a source file whose result is a bit-emission monad,
resolves labels with the fix-point assembler, and packs the bit stream
into bytes. Without -o, a hexdump of the artifact is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, bytes, err := evalFile(args[0], true)
		if err != nil {
			return err
		}

		if flagOutput == "" {
			fmt.Println(cell.Hexdump(bytes))
			return nil
		}

		if err := os.WriteFile(flagOutput, bytes, 0o644); err != nil {
			return err
		}
		logrus.WithField("bytes", len(bytes)).Debugf("wrote %s", flagOutput)
		return nil
	},
}

// evalFile evaluates a file; when assemble is set the result monad is also
// resolved to bytes.
func evalFile(path string, assemble bool) (cell.Cell, []byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	logrus.WithField("file", path).Debug("evaluating")

	session := interp.NewSession()
	result, err := session.Eval(string(content))
	if err != nil {
		return nil, nil, err
	}

	if !assemble {
		return result, nil, nil
	}

	value, ops, err := bitcode.AssembleCell(result)
	if err != nil {
		return nil, nil, err
	}
	logrus.WithField("value", value.Inspect()).Debug("assembled")

	return value, cell.BitCodeBytes(ops), nil
}

func init() {
	assembleCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write the artifact to a file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(assembleCmd)
}
