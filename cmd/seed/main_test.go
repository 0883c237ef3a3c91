package main

import (
	"strings"
	"testing"

	"alcyxob/fitness-coach/internal/config"
	"alcyxob/fitness-coach/internal/generation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog_Embedded(t *testing.T) {
	exercises, err := parseCatalog(catalogYAML)
	require.NoError(t, err)
	require.NotEmpty(t, exercises)

	tables, err := config.DefaultPlanningTables()
	require.NoError(t, err)
	known := map[string]bool{}
	for _, loc := range []string{"home", "gym", "outdoor"} {
		for _, tag := range tables.EquipmentFor(loc) {
			known[tag] = true
		}
	}

	names := map[string]bool{}
	for _, ex := range exercises {
		assert.False(t, names[ex.Name], "duplicate %q", ex.Name)
		names[ex.Name] = true
		assert.True(t, known[ex.Equipment], "%q uses unknown equipment %q", ex.Name, ex.Equipment)
	}

	// The built-in plan must resolve against the seeded catalog.
	draft, err := generation.NewStaticGenerator().GenerateStructuredPlan(t.Context(), "")
	require.NoError(t, err)
	for _, session := range draft.Sessions {
		for _, ex := range session.Exercises {
			assert.True(t, names[strings.ToLower(ex.ExerciseName)], "static plan exercise %q missing from catalog", ex.ExerciseName)
		}
	}
}

func TestParseCatalog_Rejects(t *testing.T) {
	_, err := parseCatalog([]byte("- name: no equipment\n"))
	assert.Error(t, err)

	_, err = parseCatalog([]byte("not: [a list"))
	assert.Error(t, err)
}
