// Package lumenplug is the contribution registry for Lumen viewer
// plugins. It parses a plugin's declarative manifest into an immutable
// table of contributions (commands, sample-data providers, widgets),
// resolves each contribution's entry point lazily through the resolve
// package, and dispatches invocations on behalf of the host while
// isolating failures so one broken contribution cannot take down the
// rest of the plugin.
//
// The host viewer itself, its rendering pipeline, and the imaging
// backends the resolved callables talk to are external collaborators;
// this package owns only the lookup, resolution, and dispatch contracts
// between them.
package lumenplug

import "github.com/google/uuid"

// ContributionKind identifies the kind of a declared extension point.
type ContributionKind string

const (
	KindCommand    ContributionKind = "command"
	KindSampleData ContributionKind = "sample_data"
	KindWidget     ContributionKind = "widget"
)

// String returns the string representation of the ContributionKind.
func (k ContributionKind) String() string {
	return string(k)
}

// LayerKind identifies which viewer layer type a sample dataset element
// should be opened as.
type LayerKind string

const (
	LayerImage   LayerKind = "image"
	LayerLabels  LayerKind = "labels"
	LayerPoints  LayerKind = "points"
	LayerShapes  LayerKind = "shapes"
	LayerTracks  LayerKind = "tracks"
	LayerVectors LayerKind = "vectors"
	LayerSurface LayerKind = "surface"
)

// LayerData is one element of a sample-data provider's result: the
// in-memory data, its display metadata, and the layer kind the host
// should open it as.
type LayerData struct {
	Data any            `json:"data"`
	Meta map[string]any `json:"meta"`
	Kind LayerKind      `json:"kind"`
}

// Widget is the capability a widget command's result must satisfy: a
// constructible UI panel the host can dock. Concrete panel rendering
// belongs to the host's toolkit; the registry only checks and hands
// over this interface.
type Widget interface {
	WidgetTitle() string
}

// WidgetHandle wraps one constructed widget instance. Every CreateWidget
// call yields a fresh handle with its own ID; handles are independent
// panel instances.
type WidgetHandle struct {
	ID             string `json:"id"`
	ContributionID string `json:"contribution_id"`
	DisplayName    string `json:"display_name"`
	Widget         Widget `json:"-"`
}

func newWidgetHandle(contributionID, displayName string, w Widget) *WidgetHandle {
	return &WidgetHandle{
		ID:             uuid.NewString(),
		ContributionID: contributionID,
		DisplayName:    displayName,
		Widget:         w,
	}
}

// CommandDescriptor is the id/title pair the host uses to populate
// menus. Listing descriptors never resolves entry points.
type CommandDescriptor struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SampleDataDescriptor describes one sample dataset for UI population.
type SampleDataDescriptor struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Command     string `json:"command"`
}

// WidgetDescriptor describes one dockable widget for UI population.
// The ID is the backing command's id.
type WidgetDescriptor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
