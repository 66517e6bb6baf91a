package scopefsm

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Manifest is a YAML-declared machine layout: class tag, initial state,
// state names with optional valid-transition allow-lists, and all-state
// events. Entry logic stays in code and is bound by state name at load time.
//
//	class: vehicle
//	initial: stopped
//	all_state_events: [abort]
//	states:
//	  - name: stopped
//	    valid_transitions: [connecting]
//	  - name: connecting
//	  - name: connected
//	  - name: connected.busy
type Manifest struct {
	Class          string          `yaml:"class"`
	Initial        string          `yaml:"initial"`
	AllStateEvents []string        `yaml:"all_state_events"`
	States         []ManifestState `yaml:"states"`
}

// ManifestState declares one state of a Manifest.
type ManifestState struct {
	Name             string   `yaml:"name"`
	ValidTransitions []string `yaml:"valid_transitions"`
}

// LoadManifest parses a YAML manifest.
func LoadManifest(data []byte) (*Manifest, error) {
	var mf Manifest
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if mf.Class == "" {
		return nil, fmt.Errorf("manifest has no class")
	}
	if len(mf.States) == 0 {
		return nil, fmt.Errorf("manifest %q has no states", mf.Class)
	}
	return &mf, nil
}

// Definition binds entry logic to the manifest's states by name and returns
// the resulting definition. Every declared state needs an entry in entries;
// the definition is validated by Build as usual.
func (mf *Manifest) Definition(entries map[string]EntryFunc) (*Definition, error) {
	d := NewDefinition(mf.Class)
	for _, s := range mf.States {
		entry, ok := entries[s.Name]
		if !ok {
			return nil, fmt.Errorf("manifest %q: no entry logic for state %q", mf.Class, s.Name)
		}
		var opts []StateOption
		if len(s.ValidTransitions) > 0 {
			opts = append(opts, WithValidTransitions(s.ValidTransitions...))
		}
		d.State(s.Name, entry, opts...)
	}
	d.AllStateEvent(mf.AllStateEvents...)
	d.Initial(mf.Initial)
	return d, nil
}
