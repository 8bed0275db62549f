package lumenplug

import "fmt"

// coerceLayers normalizes a sample-data provider's result into
// []LayerData. Providers written in Go return []LayerData directly;
// generic providers may return []any whose elements are LayerData
// values, *LayerData pointers, or raw 3-element []any tuples in
// (data, meta, kind) order. Anything else is malformed, and the reason
// string says why.
func coerceLayers(result any) ([]LayerData, string) {
	switch v := result.(type) {
	case []LayerData:
		return v, ""
	case []any:
		layers := make([]LayerData, 0, len(v))
		for i, elem := range v {
			layer, reason := coerceLayer(elem)
			if reason != "" {
				return nil, fmt.Sprintf("element %d: %s", i, reason)
			}
			layers = append(layers, layer)
		}
		return layers, ""
	case nil:
		return nil, "provider returned nil"
	default:
		return nil, fmt.Sprintf("provider returned %T, want a sequence of layer tuples", result)
	}
}

func coerceLayer(elem any) (LayerData, string) {
	switch e := elem.(type) {
	case LayerData:
		return e, ""
	case *LayerData:
		if e == nil {
			return LayerData{}, "nil layer"
		}
		return *e, ""
	case []any:
		if len(e) != 3 {
			return LayerData{}, fmt.Sprintf("tuple has %d elements, want 3", len(e))
		}
		meta, reason := coerceMeta(e[1])
		if reason != "" {
			return LayerData{}, reason
		}
		kind, ok := e[2].(string)
		if !ok {
			if lk, isKind := e[2].(LayerKind); isKind {
				kind = string(lk)
			} else {
				return LayerData{}, fmt.Sprintf("layer kind is %T, want string", e[2])
			}
		}
		return LayerData{Data: e[0], Meta: meta, Kind: LayerKind(kind)}, ""
	default:
		return LayerData{}, fmt.Sprintf("element is %T, want a 3-element layer tuple", elem)
	}
}

func coerceMeta(v any) (map[string]any, string) {
	switch m := v.(type) {
	case nil:
		return map[string]any{}, ""
	case map[string]any:
		return m, ""
	default:
		return nil, fmt.Sprintf("layer metadata is %T, want map[string]any", v)
	}
}
