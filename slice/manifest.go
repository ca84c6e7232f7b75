package slice

import (
	"maps"
	"slices"

	"facette.io/natsort"
)

// ActionInfo describes one declared creator.
type ActionInfo struct {
	Name          string `json:"name"          yaml:"name"`
	Type          string `json:"type"          yaml:"type"`
	DisplayName   string `json:"displayName"   yaml:"displayName"`
	HasTransition bool   `json:"hasTransition" yaml:"hasTransition"`
}

// Manifest is a serializable summary of an assembled slice.
type Manifest struct {
	Namespace string       `json:"namespace"        yaml:"namespace"`
	Reducer   string       `json:"reducer"          yaml:"reducer"`
	Actions   []ActionInfo `json:"actions"          yaml:"actions"`
	Issues    []Issue      `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Manifest lists the slice's creators in natural name order.
func (d *Descriptor[S, Sel]) Manifest() Manifest {
	names := slices.Collect(maps.Keys(d.actions))
	natsort.Sort(names)

	m := Manifest{
		Namespace: d.namespace,
		Reducer:   d.reducer.Name(),
		Actions:   make([]ActionInfo, 0, len(names)),
		Issues:    d.report.Issues,
	}

	for _, name := range names {
		def := d.actions[name]
		if def == nil {
			continue
		}

		m.Actions = append(m.Actions, ActionInfo{
			Name:          name,
			Type:          def.Type(),
			DisplayName:   def.DisplayName(),
			HasTransition: def.Transition().NonEmpty(),
		})
	}

	return m
}
