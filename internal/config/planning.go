package config

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed planning.yaml
var defaultPlanningYAML []byte

// FrequencyRange is a target number of training sessions per week.
type FrequencyRange struct {
	Min int `yaml:"min" mapstructure:"min"`
	Max int `yaml:"max" mapstructure:"max"`
}

func (f FrequencyRange) String() string {
	return fmt.Sprintf("%d-%d", f.Min, f.Max)
}

// PlanningTables are the static lookups plan generation relies on.
// Keys are matched case-insensitively.
type PlanningTables struct {
	DefaultLocation  string                    `yaml:"default_location" mapstructure:"default_location"`
	Locations        map[string][]string       `yaml:"locations" mapstructure:"locations"`
	DefaultFrequency FrequencyRange            `yaml:"default_frequency" mapstructure:"default_frequency"`
	Frequencies      map[string]FrequencyRange `yaml:"frequencies" mapstructure:"frequencies"`
}

// DefaultPlanningTables parses the tables shipped with the binary.
func DefaultPlanningTables() (PlanningTables, error) {
	return ParsePlanningTables(defaultPlanningYAML)
}

// ParsePlanningTables decodes a YAML document into normalized tables.
func ParsePlanningTables(data []byte) (PlanningTables, error) {
	var tables PlanningTables
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return PlanningTables{}, fmt.Errorf("parse planning tables: %w", err)
	}
	tables.normalize()
	if err := tables.Validate(); err != nil {
		return PlanningTables{}, err
	}
	return tables, nil
}

func (t *PlanningTables) normalize() {
	t.DefaultLocation = strings.ToLower(strings.TrimSpace(t.DefaultLocation))
	locations := make(map[string][]string, len(t.Locations))
	for name, tags := range t.Locations {
		locations[strings.ToLower(strings.TrimSpace(name))] = tags
	}
	t.Locations = locations
	frequencies := make(map[string]FrequencyRange, len(t.Frequencies))
	for level, r := range t.Frequencies {
		frequencies[strings.ToLower(strings.TrimSpace(level))] = r
	}
	t.Frequencies = frequencies
}

// Validate checks that every location lists equipment, the default location
// resolves and every range is sane.
func (t PlanningTables) Validate() error {
	if len(t.Locations[t.DefaultLocation]) == 0 {
		return fmt.Errorf("planning: default location %q has no equipment", t.DefaultLocation)
	}
	// An empty tag list would read as "no equipment filter" downstream.
	for name, tags := range t.Locations {
		if len(tags) == 0 {
			return fmt.Errorf("planning: location %q has no equipment", name)
		}
	}
	ranges := map[string]FrequencyRange{"default": t.DefaultFrequency}
	for level, r := range t.Frequencies {
		ranges[level] = r
	}
	for level, r := range ranges {
		if r.Min < 0 || r.Max > 7 || r.Min > r.Max {
			return fmt.Errorf("planning: invalid frequency %s for %q", r, level)
		}
	}
	return nil
}

// merge overlays non-empty entries of o onto t.
func (t *PlanningTables) merge(o PlanningTables) {
	o.normalize()
	if o.DefaultLocation != "" {
		t.DefaultLocation = o.DefaultLocation
	}
	for name, tags := range o.Locations {
		t.Locations[name] = tags
	}
	if o.DefaultFrequency != (FrequencyRange{}) {
		t.DefaultFrequency = o.DefaultFrequency
	}
	for level, r := range o.Frequencies {
		t.Frequencies[level] = r
	}
}

// ResolveLocation returns the known location for name, or the default one.
func (t PlanningTables) ResolveLocation(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if _, ok := t.Locations[key]; ok {
		return key
	}
	return t.DefaultLocation
}

// EquipmentFor returns the equipment tags available at the given location.
func (t PlanningTables) EquipmentFor(location string) []string {
	return t.Locations[t.ResolveLocation(location)]
}

// FrequencyFor returns the weekly session range for an activity level.
func (t PlanningTables) FrequencyFor(activityLevel string) FrequencyRange {
	if r, ok := t.Frequencies[strings.ToLower(strings.TrimSpace(activityLevel))]; ok {
		return r
	}
	return t.DefaultFrequency
}
