package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumen-labs/lumenplug"
)

// NewInvokeCmd creates the "invoke" subcommand. Entry points resolve
// against the compiled-in export table, so only commands of plugins
// linked into this binary (including the built-ins) are invocable.
func NewInvokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke <manifest> <command-id>",
		Short: "Invoke a declared command and print its result",
		Args:  cobra.ExactArgs(2),
		RunE:  runInvoke,
	}

	cmd.Flags().StringArray("arg", nil, "Positional string argument (repeatable)")

	return cmd
}

func runInvoke(cmd *cobra.Command, args []string) error {
	m, err := loadManifestArg(args[0])
	if err != nil {
		return err
	}
	id := args[1]

	reg, err := lumenplug.New(m)
	if err != nil {
		return exitError(exitValidation, "building registry: %v", err)
	}

	rawArgs, _ := cmd.Flags().GetStringArray("arg")
	callArgs := make([]any, len(rawArgs))
	for i, a := range rawArgs {
		callArgs[i] = a
	}

	result, err := reg.InvokeCommand(cmd.Context(), id, callArgs...)
	if err != nil {
		return exitError(exitRuntime, "%v", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		// Non-JSON results (widget panels and the like) still print.
		fmt.Fprintf(cmd.OutOrStdout(), "%v\n", result)
	}
	return nil
}

// NewSampleDataCmd creates the "sample-data" subcommand.
func NewSampleDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample-data <manifest> <key>",
		Short: "Load a declared sample dataset and summarize its layers",
		Args:  cobra.ExactArgs(2),
		RunE:  runSampleData,
	}

	return cmd
}

func runSampleData(cmd *cobra.Command, args []string) error {
	m, err := loadManifestArg(args[0])
	if err != nil {
		return err
	}
	key := args[1]

	reg, err := lumenplug.New(m)
	if err != nil {
		return exitError(exitValidation, "building registry: %v", err)
	}

	layers, err := reg.LoadSampleData(cmd.Context(), key)
	if err != nil {
		return exitError(exitRuntime, "%v", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Loaded %d layer(s) for %q:\n", len(layers), key)
	for i, layer := range layers {
		name := ""
		if n, ok := layer.Meta["name"].(string); ok {
			name = n
		}
		fmt.Fprintf(out, "  %d. kind=%s name=%q data=%T\n", i+1, layer.Kind, name, layer.Data)
	}
	return nil
}
