// Package generation talks to the external model that drafts weekly plans.
// Everything that deals with raw model text lives here; callers only ever see
// a decoded PlanDraft.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strconv"
)

// PlanGenerator turns a prompt into a structured plan draft.
type PlanGenerator interface {
	GenerateStructuredPlan(ctx context.Context, prompt string) (*PlanDraft, error)
}

// PlanDraft is the fixed JSON shape the model is asked to return.
type PlanDraft struct {
	PlanName    string         `json:"planName"`
	Description string         `json:"description"`
	Sessions    []SessionDraft `json:"sessions"`
}

// SessionDraft is one day of the draft. Rest days have no exercises.
type SessionDraft struct {
	Day       string          `json:"day"`
	Name      string          `json:"name"`
	Exercises []ExerciseDraft `json:"exercises"`
	Notes     string          `json:"notes"`
}

type ExerciseDraft struct {
	ExerciseName string `json:"exerciseName"`
	Sets         Value  `json:"sets"`
	Reps         Value  `json:"reps"`
	Weight       Value  `json:"weight"`
	Duration     Value  `json:"duration"`
	Rest         Value  `json:"rest"`
	Notes        Value  `json:"notes"`
}

// Value is a planned quantity that the model may give as a number or as a
// descriptor such as "bodyweight" or "8-12". Only JSON numbers are numeric.
type Value struct {
	num     float64
	numeric bool
	quoted  bool // text came from a JSON string
	text    string
}

// Number builds a numeric Value.
func Number(f float64) Value { return Value{num: f, numeric: true} }

// Text builds a symbolic Value.
func Text(s string) Value { return Value{text: s, quoted: true} }

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = Value{}
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '"':
		v.quoted = true
		return json.Unmarshal(data, &v.text)
	case len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')):
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return err
		}
		v.num, v.numeric = f, true
		return nil
	default:
		// Booleans, arrays and objects are kept as their raw text.
		v.text = string(data)
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.numeric {
		return json.Marshal(v.num)
	}
	if v.text == "" {
		return []byte("null"), nil
	}
	return json.Marshal(v.text)
}

// IsNumeric reports whether the model sent a JSON number.
func (v Value) IsNumeric() bool { return v.numeric }

// Float returns the numeric value, if any.
func (v Value) Float() (float64, bool) {
	return v.num, v.numeric
}

// Int returns the value when it is a non-negative whole number.
func (v Value) Int() (int, bool) {
	if !v.numeric || v.num < 0 || v.num != math.Trunc(v.num) || v.num > math.MaxInt32 {
		return 0, false
	}
	return int(v.num), true
}

// Str returns the value when the model sent a JSON string.
func (v Value) Str() (string, bool) {
	return v.text, v.quoted
}

// String renders the value the way the model sent it.
func (v Value) String() string {
	if v.numeric {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.text
}
