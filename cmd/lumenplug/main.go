package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumen-labs/lumenplug/builtins"
	"github.com/lumen-labs/lumenplug/cli"
	"github.com/lumen-labs/lumenplug/resolve"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lumenplug",
	Short: "LumenPlug plugin contribution CLI",
	Long:  "LumenPlug — a CLI for validating plugin manifests and invoking their commands, sample data loaders, and widgets.",
	// SilenceUsage prevents printing usage on every error
	SilenceUsage: true,
}

func init() {
	// Built-in exports back the lumen_builtins.* references that CLI
	// invocations resolve through the process-wide table.
	builtins.Register(resolve.Global())

	rootCmd.PersistentFlags().BoolP("verbose", "", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "", false, "Suppress all output except errors")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("lumenplug version %s\n", version))

	rootCmd.AddCommand(cli.NewValidateCmd())
	rootCmd.AddCommand(cli.NewListCmd())
	rootCmd.AddCommand(cli.NewInvokeCmd())
	rootCmd.AddCommand(cli.NewSampleDataCmd())
	rootCmd.AddCommand(cli.NewServeCmd())
}
