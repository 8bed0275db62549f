package manifest

import (
	"errors"
	"testing"
)

func validManifest() *Manifest {
	return &Manifest{
		Name:        "demo",
		DisplayName: "Demo",
		Contributions: Contributions{
			Commands: []Command{
				{ID: "demo.load", EntryPoint: "demo.mod:load", Title: "Load"},
				{ID: "demo.show", EntryPoint: "demo.mod:show", Title: "Show"},
			},
			SampleData: []SampleData{
				{Command: "demo.load", DisplayName: "Demo data", Key: "demo-data"},
			},
			Widgets: []Widget{
				{Command: "demo.show", DisplayName: "Demo panel"},
			},
		},
	}
}

func TestValidate_ValidManifest(t *testing.T) {
	if err := validManifest().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Manifest)
		wantField string
	}{
		{
			name:      "missing plugin name",
			mutate:    func(m *Manifest) { m.Name = "" },
			wantField: "name",
		},
		{
			name:      "command without id",
			mutate:    func(m *Manifest) { m.Contributions.Commands[0].ID = "" },
			wantField: "commands.id",
		},
		{
			name:      "command without entry point",
			mutate:    func(m *Manifest) { m.Contributions.Commands[1].EntryPoint = "" },
			wantField: "commands.python_name",
		},
		{
			name:      "command without title",
			mutate:    func(m *Manifest) { m.Contributions.Commands[0].Title = "" },
			wantField: "commands.title",
		},
		{
			name:      "sample data without command",
			mutate:    func(m *Manifest) { m.Contributions.SampleData[0].Command = "" },
			wantField: "sample_data.command",
		},
		{
			name:      "sample data without key",
			mutate:    func(m *Manifest) { m.Contributions.SampleData[0].Key = "" },
			wantField: "sample_data.key",
		},
		{
			name:      "sample data without display name",
			mutate:    func(m *Manifest) { m.Contributions.SampleData[0].DisplayName = "" },
			wantField: "sample_data.display_name",
		},
		{
			name:      "widget without command",
			mutate:    func(m *Manifest) { m.Contributions.Widgets[0].Command = "" },
			wantField: "widgets.command",
		},
		{
			name:      "widget without display name",
			mutate:    func(m *Manifest) { m.Contributions.Widgets[0].DisplayName = "" },
			wantField: "widgets.display_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validManifest()
			tt.mutate(m)

			err := m.Validate()
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Validate() error = %v, want *ParseError", err)
			}
			if parseErr.Field != tt.wantField {
				t.Errorf("ParseError.Field = %q, want %q", parseErr.Field, tt.wantField)
			}
		})
	}
}

func TestValidate_DuplicateCommandID(t *testing.T) {
	m := validManifest()
	m.Contributions.Commands = append(m.Contributions.Commands,
		Command{ID: "demo.load", EntryPoint: "demo.other:load", Title: "Load again"})

	err := m.Validate()
	var dupErr *DuplicateIDError
	if !errors.As(err, &dupErr) {
		t.Fatalf("Validate() error = %v, want *DuplicateIDError", err)
	}
	if dupErr.Kind != "command" || dupErr.ID != "demo.load" {
		t.Errorf("DuplicateIDError = %+v", dupErr)
	}
}

func TestValidate_DuplicateSampleDataKey(t *testing.T) {
	m := validManifest()
	m.Contributions.SampleData = append(m.Contributions.SampleData,
		SampleData{Command: "demo.show", DisplayName: "Again", Key: "demo-data"})

	err := m.Validate()
	var dupErr *DuplicateIDError
	if !errors.As(err, &dupErr) {
		t.Fatalf("Validate() error = %v, want *DuplicateIDError", err)
	}
	if dupErr.Kind != "sample_data" || dupErr.ID != "demo-data" {
		t.Errorf("DuplicateIDError = %+v", dupErr)
	}
}

func TestValidate_DanglingSampleDataReference(t *testing.T) {
	m := validManifest()
	m.Contributions.SampleData[0].Command = "demo.nope"

	err := m.Validate()
	var refErr *DanglingReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("Validate() error = %v, want *DanglingReferenceError", err)
	}
	if refErr.Kind != "sample_data" || refErr.Command != "demo.nope" {
		t.Errorf("DanglingReferenceError = %+v", refErr)
	}
}

func TestValidate_DanglingWidgetReference(t *testing.T) {
	m := validManifest()
	m.Contributions.Widgets[0].Command = "demo.nope"

	err := m.Validate()
	var refErr *DanglingReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("Validate() error = %v, want *DanglingReferenceError", err)
	}
	if refErr.Kind != "widget" {
		t.Errorf("DanglingReferenceError.Kind = %q, want %q", refErr.Kind, "widget")
	}
}

func TestValidate_SharedCommandReferenceIsAllowed(t *testing.T) {
	// One command backing both a sample dataset and a widget is legal;
	// references do not claim exclusive ownership.
	m := validManifest()
	m.Contributions.Widgets = append(m.Contributions.Widgets,
		Widget{Command: "demo.show", DisplayName: "Second panel"})

	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestManifest_CommandLookup(t *testing.T) {
	m := validManifest()

	cmd, ok := m.Command("demo.show")
	if !ok {
		t.Fatal("Command(demo.show) not found")
	}
	if cmd.EntryPoint != "demo.mod:show" {
		t.Errorf("entry point = %q", cmd.EntryPoint)
	}

	if _, ok := m.Command("demo.missing"); ok {
		t.Error("Command(demo.missing) should not be found")
	}
}

func TestManifest_AccessorsReturnCopies(t *testing.T) {
	m := validManifest()

	cmds := m.Commands()
	cmds[0].ID = "mutated"
	if m.Contributions.Commands[0].ID != "demo.load" {
		t.Error("Commands() must not alias the manifest's slice")
	}

	sds := m.SampleData()
	sds[0].Key = "mutated"
	if m.Contributions.SampleData[0].Key != "demo-data" {
		t.Error("SampleData() must not alias the manifest's slice")
	}

	ws := m.Widgets()
	ws[0].Command = "mutated"
	if m.Contributions.Widgets[0].Command != "demo.show" {
		t.Error("Widgets() must not alias the manifest's slice")
	}
}
