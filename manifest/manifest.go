// Package manifest parses and validates plugin contribution manifests.
// A manifest is the declarative document a plugin ships to describe its
// commands, sample-data providers, and widgets to the Lumen viewer host.
// The whole document is validated as a unit at load time; nothing is
// registered from a manifest that fails validation.
package manifest

// Manifest is the typed form of a plugin manifest document.
type Manifest struct {
	// Name is the plugin's package name, used as the id namespace
	// (e.g. "micro-sam").
	Name string `json:"name" yaml:"name"`

	// DisplayName is the human-readable plugin name for UI labeling.
	DisplayName string `json:"display_name" yaml:"display_name"`

	Contributions Contributions `json:"contributions" yaml:"contributions"`
}

// Contributions groups the declared extension points by kind.
type Contributions struct {
	Commands   []Command    `json:"commands" yaml:"commands"`
	SampleData []SampleData `json:"sample_data" yaml:"sample_data"`
	Widgets    []Widget     `json:"widgets" yaml:"widgets"`
}

// Command declares an invocable entry point.
type Command struct {
	// ID is globally unique across all contribution kinds.
	ID string `json:"id" yaml:"id"`

	// EntryPoint is the opaque "location:attribute" locator for the
	// command's callable. The document key is "python_name" for
	// compatibility with existing viewer plugin manifests.
	EntryPoint string `json:"python_name" yaml:"python_name"`

	// Title labels the command in menus.
	Title string `json:"title" yaml:"title"`
}

// SampleData declares a sample dataset provider. It does not own a
// command; Command is a reference to a declared Command.ID.
type SampleData struct {
	Command     string `json:"command" yaml:"command"`
	DisplayName string `json:"display_name" yaml:"display_name"`

	// Key is unique among the manifest's sample_data entries.
	Key string `json:"key" yaml:"key"`
}

// Widget declares a dockable UI panel backed by a declared command.
type Widget struct {
	Command     string `json:"command" yaml:"command"`
	DisplayName string `json:"display_name" yaml:"display_name"`
}

// Commands returns the declared commands in declaration order.
func (m *Manifest) Commands() []Command {
	out := make([]Command, len(m.Contributions.Commands))
	copy(out, m.Contributions.Commands)
	return out
}

// SampleData returns the declared sample-data entries in declaration order.
func (m *Manifest) SampleData() []SampleData {
	out := make([]SampleData, len(m.Contributions.SampleData))
	copy(out, m.Contributions.SampleData)
	return out
}

// Widgets returns the declared widgets in declaration order.
func (m *Manifest) Widgets() []Widget {
	out := make([]Widget, len(m.Contributions.Widgets))
	copy(out, m.Contributions.Widgets)
	return out
}

// Command returns the declared command with the given id.
func (m *Manifest) Command(id string) (Command, bool) {
	for _, c := range m.Contributions.Commands {
		if c.ID == id {
			return c, true
		}
	}
	return Command{}, false
}
