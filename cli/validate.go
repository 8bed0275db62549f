package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumen-labs/lumenplug/manifest"
)

// NewValidateCmd creates the "validate" subcommand.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Validate a plugin manifest without registering it",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}

	cmd.Flags().String("format", "text", "Output format: text | json")

	return cmd
}

// validateReport is the JSON output shape of the validate command.
type validateReport struct {
	Valid      bool   `json:"valid"`
	Plugin     string `json:"plugin,omitempty"`
	Commands   int    `json:"commands"`
	SampleData int    `json:"sample_data"`
	Widgets    int    `json:"widgets"`
	Error      string `json:"error,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	format, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return exitError(exitFileNotFound, "file not found: %s", filePath)
		}
		return fmt.Errorf("reading file: %w", err)
	}

	m, err := manifest.LoadBytes(data, filePath)
	report := validateReport{Valid: err == nil}
	if err != nil {
		report.Error = err.Error()
		report.ErrorKind = classifyManifestError(err)
	} else {
		report.Plugin = m.Name
		report.Commands = len(m.Contributions.Commands)
		report.SampleData = len(m.Contributions.SampleData)
		report.Widgets = len(m.Contributions.Widgets)
	}

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else if err != nil {
		fmt.Fprintf(out, "ERROR [%s]: %v\n", report.ErrorKind, err)
	} else {
		fmt.Fprintf(out, "Valid! Plugin %q declares %d command(s), %d sample dataset(s), %d widget(s).\n",
			m.Name, report.Commands, report.SampleData, report.Widgets)
	}

	if err != nil {
		return exitError(exitValidation, "validation failed")
	}
	return nil
}

// classifyManifestError names the manifest error class for reports.
func classifyManifestError(err error) string {
	var (
		parseErr *manifest.ParseError
		dupErr   *manifest.DuplicateIDError
		refErr   *manifest.DanglingReferenceError
	)
	switch {
	case errors.As(err, &dupErr):
		return "duplicate_id"
	case errors.As(err, &refErr):
		return "dangling_reference"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "unknown"
	}
}
