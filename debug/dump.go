// Package debug dumps store internals for local development.
package debug

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"facette.io/natsort"
	"github.com/amp-labs/amp-redux/slice"
	"github.com/amp-labs/amp-redux/store"
	"gopkg.in/yaml.v3"
)

// Format selects the encoding of a dump.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Snapshot is what DumpStore writes.
type Snapshot struct {
	Slices []slice.Manifest `json:"slices"           yaml:"slices"`
	Issues []slice.Issue    `json:"issues,omitempty" yaml:"issues,omitempty"`
	Keys   []string         `json:"keys"             yaml:"keys"`
}

// NewSnapshot collects the store's slice manifests, ordered by namespace, and the
// keys currently present in its root state.
func NewSnapshot(st *store.Store) Snapshot {
	manifests := st.Manifest()
	byNamespace := make(map[string][]slice.Manifest, len(manifests))

	for _, m := range manifests {
		byNamespace[m.Namespace] = append(byNamespace[m.Namespace], m)
	}

	namespaces := slices.Collect(maps.Keys(byNamespace))
	natsort.Sort(namespaces)

	snap := Snapshot{
		Slices: make([]slice.Manifest, 0, len(manifests)),
		Issues: st.Report().Issues,
		Keys:   slices.Collect(maps.Keys(st.State())),
	}

	for _, ns := range namespaces {
		snap.Slices = append(snap.Slices, byNamespace[ns]...)
	}

	natsort.Sort(snap.Keys)

	return snap
}

// DumpStore writes a Snapshot of st to w.
func DumpStore(st *store.Store, w io.Writer, format Format) error {
	return Dump(NewSnapshot(st), w, format)
}

// Dump writes v to w in the given format.
func Dump(v any, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return DumpJSON(v, w)
	case FormatYAML:
		return DumpYAML(v, w)
	default:
		return fmt.Errorf("%w: unknown dump format %q", errUnknownFormat, format)
	}
}

// DumpJSON dumps the given value as indented JSON to the given writer.
func DumpJSON(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)

	// Type tags contain slashes and may contain other symbols that shouldn't be escaped.
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("error marshaling to JSON: %w", err)
	}

	return nil
}

// DumpYAML dumps the given value as YAML to the given writer.
func DumpYAML(v any, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2) //nolint:mnd

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("error marshaling to YAML: %w", err)
	}

	return encoder.Close()
}
