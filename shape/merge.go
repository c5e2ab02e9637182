package shape

import "github.com/viant/luasentry/typesys"

// MergePriorLayer computes the type of `context.prev` a layer's scripts
// see, from the raw source of every script in the immediately preceding
// layer (§4.9). Parallel scripts in that layer cannot observe each
// other's output, so the merged shape must stay conservative: every
// `data` field any one of them might set becomes optional, and a field
// two scripts disagree on the kind of widens to Any rather than picking
// either script's guess.
func MergePriorLayer(priorLayerSources []string) *typesys.Type {
	result := typesys.NewTable()
	result.AddField(&typesys.Field{Name: "allowed", Type: typesys.Boolean})
	result.AddField(&typesys.Field{Name: "error", Type: typesys.String, Optional: true})

	merged := map[string]*typesys.Type{}
	order := make([]string, 0)

	for _, src := range priorLayerSources {
		dataShape := ExtractReturnDataType(src)
		if dataShape == nil || dataShape.Kind != typesys.KindTable {
			continue
		}
		for _, f := range dataShape.Fields {
			existing, seen := merged[f.Name]
			if !seen {
				merged[f.Name] = f.Type
				order = append(order, f.Name)
				continue
			}
			merged[f.Name] = widen(existing, f.Type)
		}
	}

	if len(order) > 0 {
		data := typesys.NewTable()
		for _, name := range order {
			data.AddField(&typesys.Field{Name: name, Type: merged[name], Optional: true})
		}
		result.AddField(&typesys.Field{Name: "data", Type: data, Optional: true})
	}

	return result
}

// widen combines two observed types for the same field name across
// different scripts: identical kinds keep that kind, anything else
// collapses to Any — the merger has no use for Union here, since a
// caller reading `context.prev.data.x` wants a single type to narrow
// against, not a union it would have to re-narrow itself.
func widen(a, b *typesys.Type) *typesys.Type {
	if a == nil || b == nil {
		return typesys.Any
	}
	if a.Kind == b.Kind {
		return a
	}
	return typesys.Any
}
