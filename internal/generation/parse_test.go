package generation

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDraft = `{
  "planName": "Strength Week",
  "description": "Heavier compound work.",
  "sessions": [
    {"day": "Monday", "name": "Push", "exercises": [
      {"exerciseName": "Barbell Bench Press", "sets": 4, "reps": "8-10", "weight": 60.5, "duration": null, "rest": 120, "notes": "Pause on the chest."}
    ], "notes": "Warm up."},
    {"day": "Tuesday", "name": "Rest Day", "exercises": [], "notes": ""}
  ]
}`

func TestParseDraft_PlainJSON(t *testing.T) {
	draft, err := ParseDraft(sampleDraft)
	require.NoError(t, err)

	assert.Equal(t, "Strength Week", draft.PlanName)
	require.Len(t, draft.Sessions, 2)
	ex := draft.Sessions[0].Exercises[0]

	sets, ok := ex.Sets.Int()
	assert.True(t, ok)
	assert.Equal(t, 4, sets)

	_, ok = ex.Reps.Int()
	assert.False(t, ok, "a rep range is symbolic")
	assert.Equal(t, "8-10", ex.Reps.String())

	weight, ok := ex.Weight.Float()
	assert.True(t, ok)
	assert.InDelta(t, 60.5, weight, 1e-9)

	_, ok = ex.Duration.Float()
	assert.False(t, ok)

	notes, ok := ex.Notes.Str()
	assert.True(t, ok)
	assert.Equal(t, "Pause on the chest.", notes)
	assert.Empty(t, draft.Sessions[1].Exercises)
}

func TestParseDraft_FencedBlock(t *testing.T) {
	for name, text := range map[string]string{
		"json tag":   "Here you go:\n```json\n" + sampleDraft + "\n```\nEnjoy!",
		"no tag":     "```\n" + sampleDraft + "\n```",
		"whitespace": "\n\n  " + sampleDraft + "  \n",
	} {
		t.Run(name, func(t *testing.T) {
			draft, err := ParseDraft(text)
			require.NoError(t, err)
			assert.Equal(t, "Strength Week", draft.PlanName)
		})
	}
}

func TestParseDraft_Errors(t *testing.T) {
	_, err := ParseDraft("   ")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = ParseDraft("```json\n```")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = ParseDraft("I cannot help with that.")
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = ParseDraft(`{"sessions": "monday"}`)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseDraft_EmptyObjectDecodes(t *testing.T) {
	// Shape validation is the caller's job
	draft, err := ParseDraft(`{}`)
	require.NoError(t, err)
	assert.Empty(t, draft.Sessions)
}

func TestValue_Int(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{`3`, 3, true},
		{`3.0`, 3, true},
		{`3.5`, 0, false},
		{`-1`, 0, false},
		{`"3"`, 0, false},
		{`null`, 0, false},
		{`true`, 0, false},
	}
	for _, tc := range cases {
		var v Value
		require.NoError(t, json.Unmarshal([]byte(tc.in), &v), tc.in)
		got, ok := v.Int()
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestValue_MarshalKeepsKind(t *testing.T) {
	out, err := json.Marshal(struct {
		A Value `json:"a"`
		B Value `json:"b"`
		C Value `json:"c"`
	}{Number(12), Text("bodyweight"), Value{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 12, "b": "bodyweight", "c": null}`, string(out))
}

func TestStaticGenerator(t *testing.T) {
	draft, err := NewStaticGenerator().GenerateStructuredPlan(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Len(t, draft.Sessions, 7)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewStaticGenerator().GenerateStructuredPlan(ctx, "ignored")
	assert.ErrorIs(t, err, context.Canceled)
}
