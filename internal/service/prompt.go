package service

import (
	"fmt"
	"strings"

	"alcyxob/fitness-coach/internal/config"
	"alcyxob/fitness-coach/internal/domain"
)

// PromptInput is everything the generation request is built from.
type PromptInput struct {
	Profile   domain.Profile
	Location  string // resolved location key
	Frequency config.FrequencyRange
	Catalog   []domain.Exercise
	Summary   *domain.PerformanceSummary // nil when there is no previous plan
}

// BuildPrompt renders the generation request sent to the model.
func BuildPrompt(in PromptInput) string {
	p := in.Profile
	var b strings.Builder

	b.WriteString("Generate a 1-week personalized training plan in JSON format for the upcoming week.\n\n")

	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Goal: %s\n", orNA(p.Goal))
	fmt.Fprintf(&b, "- Experience Level: %s\n", orNA(p.Experience))
	fmt.Fprintf(&b, "- Activity Level: %s\n", orNA(p.ActivityLevel))
	fmt.Fprintf(&b, "- Training Location: %s\n", in.Location)
	preferred := "Any"
	if len(p.PreferredTrainingDays) > 0 {
		preferred = strings.Join(p.PreferredTrainingDays, ", ")
	}
	fmt.Fprintf(&b, "- Preferred Training Days: %s\n", preferred)
	fmt.Fprintf(&b, "- Weight: %s kg\n", optionalNumber(p.WeightKg))
	fmt.Fprintf(&b, "- Height: %s cm\n", optionalNumber(p.HeightCm))
	fmt.Fprintf(&b, "- Wants Pre-Workout Info: %s\n\n", yesNo(p.WantsPreWorkoutInfo))

	b.WriteString("Previous Week Analysis:\n")
	if in.Summary == nil {
		b.WriteString("No previous plan. Build a balanced introductory week.\n\n")
	} else {
		b.WriteString("--- Performance Summary ---\n")
		b.WriteString(FormatPerformance(in.Summary))
		b.WriteString("\n--- Daily Condition Summary ---\n")
		b.WriteString(FormatCondition(in.Summary.Condition))
		b.WriteString("\n\n")
	}

	b.WriteString("Plan Requirements for the Upcoming Week:\n")
	b.WriteString("- Duration: 1 week. Return exactly one entry for each day from Monday to Sunday.\n")
	fmt.Fprintf(&b, "- Frequency: schedule between %d and %d training sessions; all other days are rest days with an empty exercise list. Prioritize preferred days if specified.\n",
		in.Frequency.Min, in.Frequency.Max)
	fmt.Fprintf(&b, "- Focus: align exercise selection, sets, reps and rest with the goal (%s) and experience level (%s).\n",
		orNA(p.Goal), orNA(p.Experience))
	b.WriteString("- Adaptation: use the Previous Week Analysis.\n")
	b.WriteString("  - Where performance on an exercise was strong, slightly increase weight, reps or sets.\n")
	b.WriteString("  - Where an exercise was underperformed or often skipped, reduce the load or pick an easier alternative from the list.\n")
	b.WriteString("  - If sleep, energy, stress or soreness were poor, plan lower intensity and more rest.\n")
	b.WriteString("  - If condition was good, the user can handle more volume.\n")
	b.WriteString("- Exercises: ONLY use exercises from the list below, with their EXACT names.\n")
	if p.WantsPreWorkoutInfo {
		b.WriteString("- Pre-Workout Notes: start each training session's notes with a short pre-workout suggestion.\n")
	}
	b.WriteString("\n")

	b.WriteString("Available Exercises (Name, Target Muscle, Body Part, Equipment, Secondary Muscles):\n")
	for _, ex := range in.Catalog {
		b.WriteString(FormatCatalogEntry(ex))
		b.WriteString("\n")
	}

	b.WriteString(`
JSON Output Structure:
{
  "planName": "string",
  "description": "string",
  "sessions": [
    {
      "day": "Monday | Tuesday | Wednesday | Thursday | Friday | Saturday | Sunday",
      "name": "string",
      "exercises": [
        {
          "exerciseName": "string",
          "sets": "number | string | null",
          "reps": "number | string | null",
          "weight": "number | string | null",
          "duration": "number | null",
          "rest": "number | null",
          "notes": "string | null"
        }
      ],
      "notes": "string | null"
    }
  ]
}

Return ONLY the JSON object, with no text before or after it.
`)
	return b.String()
}

// FormatCatalogEntry renders one catalog exercise as a prompt line.
func FormatCatalogEntry(ex domain.Exercise) string {
	secondary := "None"
	if len(ex.SecondaryMuscles) > 0 {
		secondary = strings.Join(ex.SecondaryMuscles, ", ")
	}
	return fmt.Sprintf("- %s (Target: %s, Body Part: %s, Equipment: %s, Secondary: %s)",
		ex.Name, orNA(ex.TargetMuscle), orNA(ex.BodyPart), orNA(ex.Equipment), secondary)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func optionalNumber(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return formatNumber(*v)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
