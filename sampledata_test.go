package lumenplug

import "testing"

func TestCoerceLayers_TypedSlice(t *testing.T) {
	in := []LayerData{{Data: 1, Meta: map[string]any{"name": "a"}, Kind: LayerImage}}
	layers, reason := coerceLayers(in)
	if reason != "" {
		t.Fatalf("unexpected reason %q", reason)
	}
	if len(layers) != 1 || layers[0].Kind != LayerImage {
		t.Errorf("layers = %+v", layers)
	}
}

func TestCoerceLayers_GenericTuples(t *testing.T) {
	in := []any{
		[]any{[]float64{1, 2}, map[string]any{"name": "img"}, "image"},
		[]any{[]int{0, 1}, nil, LayerLabels},
		LayerData{Data: "pts", Kind: LayerPoints},
		&LayerData{Data: "vec", Kind: LayerVectors},
	}

	layers, reason := coerceLayers(in)
	if reason != "" {
		t.Fatalf("unexpected reason %q", reason)
	}
	if len(layers) != 4 {
		t.Fatalf("got %d layers, want 4", len(layers))
	}
	if layers[0].Kind != LayerImage || layers[0].Meta["name"] != "img" {
		t.Errorf("layer 0 = %+v", layers[0])
	}
	if layers[1].Kind != LayerLabels {
		t.Errorf("layer 1 kind = %q", layers[1].Kind)
	}
	if layers[1].Meta == nil {
		t.Error("nil tuple metadata should coerce to an empty map")
	}
	if layers[2].Kind != LayerPoints || layers[3].Kind != LayerVectors {
		t.Errorf("layers 2/3 = %+v / %+v", layers[2], layers[3])
	}
}

func TestCoerceLayers_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"nil result", nil},
		{"scalar result", 42},
		{"string result", "layers"},
		{"short tuple", []any{[]any{1, nil}}},
		{"long tuple", []any{[]any{1, nil, "image", "extra"}}},
		{"bad metadata", []any{[]any{1, "not a map", "image"}}},
		{"bad kind", []any{[]any{1, nil, 7}}},
		{"bad element", []any{"not a tuple"}},
		{"nil layer pointer", []any{(*LayerData)(nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, reason := coerceLayers(tt.in); reason == "" {
				t.Errorf("coerceLayers(%v) accepted malformed input", tt.in)
			}
		})
	}
}

func TestCoerceLayers_EmptySequences(t *testing.T) {
	if layers, reason := coerceLayers([]LayerData{}); reason != "" || len(layers) != 0 {
		t.Errorf("empty typed slice: layers=%v reason=%q", layers, reason)
	}
	if layers, reason := coerceLayers([]any{}); reason != "" || len(layers) != 0 {
		t.Errorf("empty generic slice: layers=%v reason=%q", layers, reason)
	}
}
