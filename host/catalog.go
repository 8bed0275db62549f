// Package host aggregates the contribution registries of every
// installed plugin into one catalog the viewer shell queries. The
// catalog routes invocations to the owning plugin and enforces that
// command ids stay unique across plugins, which each manifest can only
// guarantee for itself.
package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/lumen-labs/lumenplug"
)

// PluginInfo summarizes one registered plugin for UI population.
type PluginInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Commands    int    `json:"commands"`
	SampleData  int    `json:"sample_data"`
	Widgets     int    `json:"widgets"`
}

// Catalog holds the registries of all loaded plugins. Plugins are added
// during host startup; afterwards the catalog is read-only for the
// process lifetime (no hot reload).
type Catalog struct {
	mu      sync.RWMutex
	plugins map[string]*lumenplug.Registry
	order   []string

	commandOwner map[string]string // command id -> plugin name
	sampleOwner  map[string]string // sample key -> plugin name
	widgetOwner  map[string]string // widget command id -> plugin name
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		plugins:      make(map[string]*lumenplug.Registry),
		commandOwner: make(map[string]string),
		sampleOwner:  make(map[string]string),
		widgetOwner:  make(map[string]string),
	}
}

// Add registers a plugin's registry. A duplicate plugin name, or a
// command id / sample key already claimed by another plugin, fails the
// add and leaves the catalog unchanged.
func (c *Catalog) Add(reg *lumenplug.Registry) error {
	if reg == nil {
		return fmt.Errorf("host: nil registry")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	name := reg.Name()
	if _, exists := c.plugins[name]; exists {
		return fmt.Errorf("host: plugin %q already registered", name)
	}
	for _, cmd := range reg.Commands() {
		if owner, taken := c.commandOwner[cmd.ID]; taken {
			return fmt.Errorf("host: command id %q of plugin %q already provided by %q", cmd.ID, name, owner)
		}
	}
	for _, sd := range reg.SampleData() {
		if owner, taken := c.sampleOwner[sd.Key]; taken {
			return fmt.Errorf("host: sample data key %q of plugin %q already provided by %q", sd.Key, name, owner)
		}
	}

	c.plugins[name] = reg
	c.order = append(c.order, name)
	for _, cmd := range reg.Commands() {
		c.commandOwner[cmd.ID] = name
	}
	for _, sd := range reg.SampleData() {
		c.sampleOwner[sd.Key] = name
	}
	for _, w := range reg.Widgets() {
		c.widgetOwner[w.ID] = name
	}
	return nil
}

// Plugins lists registered plugins in registration order.
func (c *Catalog) Plugins() []PluginInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]PluginInfo, 0, len(c.order))
	for _, name := range c.order {
		reg := c.plugins[name]
		out = append(out, PluginInfo{
			Name:        reg.Name(),
			DisplayName: reg.DisplayName(),
			Commands:    len(reg.Commands()),
			SampleData:  len(reg.SampleData()),
			Widgets:     len(reg.Widgets()),
		})
	}
	return out
}

// Plugin returns the registry for a plugin name.
func (c *Catalog) Plugin(name string) (*lumenplug.Registry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	reg, ok := c.plugins[name]
	return reg, ok
}

// Commands lists every plugin's commands in registration, then
// declaration, order.
func (c *Catalog) Commands() []lumenplug.CommandDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []lumenplug.CommandDescriptor
	for _, name := range c.order {
		out = append(out, c.plugins[name].Commands()...)
	}
	return out
}

// SampleData lists every plugin's sample datasets.
func (c *Catalog) SampleData() []lumenplug.SampleDataDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []lumenplug.SampleDataDescriptor
	for _, name := range c.order {
		out = append(out, c.plugins[name].SampleData()...)
	}
	return out
}

// Widgets lists every plugin's widgets.
func (c *Catalog) Widgets() []lumenplug.WidgetDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []lumenplug.WidgetDescriptor
	for _, name := range c.order {
		out = append(out, c.plugins[name].Widgets()...)
	}
	return out
}

// InvokeCommand routes the invocation to the owning plugin.
func (c *Catalog) InvokeCommand(ctx context.Context, id string, args ...any) (any, error) {
	reg, ok := c.ownerOf(c.commandOwner, id)
	if !ok {
		return nil, &lumenplug.UnknownCommandError{ID: id}
	}
	return reg.InvokeCommand(ctx, id, args...)
}

// LoadSampleData routes the load to the owning plugin.
func (c *Catalog) LoadSampleData(ctx context.Context, key string) ([]lumenplug.LayerData, error) {
	reg, ok := c.ownerOf(c.sampleOwner, key)
	if !ok {
		return nil, &lumenplug.UnknownSampleDataError{Key: key}
	}
	return reg.LoadSampleData(ctx, key)
}

// CreateWidget routes the construction to the owning plugin.
func (c *Catalog) CreateWidget(ctx context.Context, id string) (*lumenplug.WidgetHandle, error) {
	reg, ok := c.ownerOf(c.widgetOwner, id)
	if !ok {
		return nil, &lumenplug.UnknownWidgetError{ID: id}
	}
	return reg.CreateWidget(ctx, id)
}

func (c *Catalog) ownerOf(owners map[string]string, key string) (*lumenplug.Registry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := owners[key]
	if !ok {
		return nil, false
	}
	return c.plugins[name], true
}
