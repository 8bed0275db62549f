package manifest

// Validate checks the manifest as a unit. The first violation is
// returned and the whole document is rejected; a manifest that fails
// validation must not be partially registered.
//
// Checks, in order: required fields, id/key uniqueness within kind,
// command references. A command referenced by several entries, or by
// none, is permitted.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return &ParseError{Field: "name"}
	}

	for _, c := range m.Contributions.Commands {
		switch {
		case c.ID == "":
			return &ParseError{Field: "commands.id"}
		case c.EntryPoint == "":
			return &ParseError{Field: "commands.python_name"}
		case c.Title == "":
			return &ParseError{Field: "commands.title"}
		}
	}
	for _, sd := range m.Contributions.SampleData {
		switch {
		case sd.Command == "":
			return &ParseError{Field: "sample_data.command"}
		case sd.Key == "":
			return &ParseError{Field: "sample_data.key"}
		case sd.DisplayName == "":
			return &ParseError{Field: "sample_data.display_name"}
		}
	}
	for _, w := range m.Contributions.Widgets {
		switch {
		case w.Command == "":
			return &ParseError{Field: "widgets.command"}
		case w.DisplayName == "":
			return &ParseError{Field: "widgets.display_name"}
		}
	}

	commandIDs := make(map[string]struct{}, len(m.Contributions.Commands))
	for _, c := range m.Contributions.Commands {
		if _, dup := commandIDs[c.ID]; dup {
			return &DuplicateIDError{Kind: "command", ID: c.ID}
		}
		commandIDs[c.ID] = struct{}{}
	}

	sampleKeys := make(map[string]struct{}, len(m.Contributions.SampleData))
	for _, sd := range m.Contributions.SampleData {
		if _, dup := sampleKeys[sd.Key]; dup {
			return &DuplicateIDError{Kind: "sample_data", ID: sd.Key}
		}
		sampleKeys[sd.Key] = struct{}{}
	}

	for _, sd := range m.Contributions.SampleData {
		if _, ok := commandIDs[sd.Command]; !ok {
			return &DanglingReferenceError{Kind: "sample_data", Command: sd.Command}
		}
	}
	for _, w := range m.Contributions.Widgets {
		if _, ok := commandIDs[w.Command]; !ok {
			return &DanglingReferenceError{Kind: "widget", Command: w.Command}
		}
	}

	return nil
}
