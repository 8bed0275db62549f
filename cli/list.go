package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lumen-labs/lumenplug/manifest"
)

// NewListCmd creates the "list" subcommand.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <manifest>",
		Short: "List the contributions a plugin manifest declares",
		Args:  cobra.ExactArgs(1),
		RunE:  runList,
	}

	cmd.Flags().String("format", "text", "Output format: text | json")
	cmd.Flags().String("kind", "", "Restrict to one kind: commands | sample-data | widgets")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	format, _ := cmd.Flags().GetString("format")
	kind, _ := cmd.Flags().GetString("kind")
	out := cmd.OutOrStdout()

	m, err := loadManifestArg(filePath)
	if err != nil {
		return err
	}

	if format == "json" {
		payload := map[string]any{}
		if kind == "" || kind == "commands" {
			payload["commands"] = m.Commands()
		}
		if kind == "" || kind == "sample-data" {
			payload["sample_data"] = m.SampleData()
		}
		if kind == "" || kind == "widgets" {
			payload["widgets"] = m.Widgets()
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	writer := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	if kind == "" || kind == "commands" {
		fmt.Fprintln(writer, "COMMAND\tTITLE\tENTRY POINT")
		for _, c := range m.Commands() {
			fmt.Fprintf(writer, "%s\t%s\t%s\n", c.ID, c.Title, c.EntryPoint)
		}
	}
	if kind == "" || kind == "sample-data" {
		fmt.Fprintln(writer, "SAMPLE DATA\tDISPLAY NAME\tCOMMAND")
		for _, sd := range m.SampleData() {
			fmt.Fprintf(writer, "%s\t%s\t%s\n", sd.Key, sd.DisplayName, sd.Command)
		}
	}
	if kind == "" || kind == "widgets" {
		fmt.Fprintln(writer, "WIDGET\tDISPLAY NAME")
		for _, w := range m.Widgets() {
			fmt.Fprintf(writer, "%s\t%s\n", w.Command, w.DisplayName)
		}
	}
	return writer.Flush()
}

// loadManifestArg loads a manifest path argument with CLI exit-code
// semantics shared by list, invoke, and sample-data.
func loadManifestArg(filePath string) (*manifest.Manifest, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, exitError(exitFileNotFound, "file not found: %s", filePath)
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}
	m, err := manifest.LoadBytes(data, filePath)
	if err != nil {
		return nil, exitError(exitValidation, "invalid manifest: %v", err)
	}
	return m, nil
}
