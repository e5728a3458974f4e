package service

import (
	"aifitness/coach-app/internal/ai"
	"aifitness/coach-app/internal/domain"
	"fmt"
	"strings"
)

// buildWorkoutPrompt assembles the system and user messages for workout plan
// generation, embedding the profile and an explicit output-format contract.
func buildWorkoutPrompt(profile *domain.Profile, note string) []ai.Message {
	var b strings.Builder

	b.WriteString("Create a personalized weekly workout plan for this person:\n\n")
	writeProfileSummary(&b, profile)

	if note != "" {
		b.WriteString("\nAdditional request from the user: ")
		b.WriteString(note)
		b.WriteString("\n")
	}

	b.WriteString(`
Respond with ONLY a JSON object in exactly this shape, no markdown fences,
no commentary:

{
  "location": "home",
  "availableEquipment": ["dumbbells"],
  "generalNotes": "Short overall guidance",
  "days": [
    {
      "dayIndex": 0,
      "label": "Day 1",
      "focus": "Full body",
      "isRestDay": false,
      "notes": "",
      "exercises": [
        {
          "name": "Goblet Squat",
          "equipment": "dumbbell",
          "sets": 3,
          "reps": "8-12",
          "restSeconds": 90,
          "order": 1,
          "tempo": "2-0-2",
          "notes": "Keep the chest up"
        }
      ]
    }
  ]
}

Rules:
- "days" covers a full week; include rest days with "isRestDay": true and an
  empty "exercises" array.
- "sets", "restSeconds", "order" and "dayIndex" must be numbers; "reps" must
  be a string (e.g. "8-12", "AMRAP", "30s").
- Only prescribe exercises that fit the person's location and equipment.
`)

	if profile.Language != "" {
		fmt.Fprintf(&b, "- Write all text fields in %s.\n", profile.Language)
	}

	return []ai.Message{
		{Role: "system", Content: "You are an experienced personal trainer who designs safe, effective workout plans."},
		{Role: "user", Content: b.String()},
	}
}

// buildDietPrompt assembles the diet generation messages. The output is
// stored as an opaque document, but the prompt still suggests a structure so
// meal images can be addressed when the model cooperates.
func buildDietPrompt(profile *domain.Profile, note string) []ai.Message {
	var b strings.Builder

	b.WriteString("Create a personalized weekly diet plan for this person:\n\n")
	writeProfileSummary(&b, profile)

	if note != "" {
		b.WriteString("\nAdditional request from the user: ")
		b.WriteString(note)
		b.WriteString("\n")
	}

	b.WriteString(`
Respond with a JSON object shaped like:

{
  "generalNotes": "Short overall guidance",
  "days": [
    {
      "dayIndex": 0,
      "label": "Day 1",
      "meals": [
        {
          "name": "Breakfast",
          "description": "Oatmeal with berries",
          "calories": 450,
          "ingredients": ["oats", "milk", "blueberries"]
        }
      ]
    }
  ]
}
`)

	if profile.Language != "" {
		fmt.Fprintf(&b, "Write all text fields in %s.\n", profile.Language)
	}

	return []ai.Message{
		{Role: "system", Content: "You are a registered dietitian who designs balanced, realistic meal plans."},
		{Role: "user", Content: b.String()},
	}
}

// buildImagePrompt demands a single illustrative image URL as strict JSON.
func buildImagePrompt(subject string) []ai.Message {
	content := fmt.Sprintf(`Find one publicly accessible HTTPS image URL illustrating %s.

Respond with ONLY this JSON, nothing else:
{"imageUrl": "https://..."}`, subject)

	return []ai.Message{
		{Role: "user", Content: content},
	}
}

func writeProfileSummary(b *strings.Builder, profile *domain.Profile) {
	writeField := func(label, value string) {
		if value != "" {
			fmt.Fprintf(b, "- %s: %s\n", label, value)
		}
	}

	writeField("Goal", profile.Goal)
	writeField("Experience level", profile.ExperienceLevel)
	if profile.DaysPerWeek > 0 {
		fmt.Fprintf(b, "- Training days per week: %d\n", profile.DaysPerWeek)
	}
	writeField("Training location", string(profile.Location))
	if len(profile.Equipment) > 0 {
		fmt.Fprintf(b, "- Available equipment: %s\n", strings.Join(profile.Equipment, ", "))
	}
	writeField("Limitations or injuries", profile.Limitations)
	if profile.Age > 0 {
		fmt.Fprintf(b, "- Age: %d\n", profile.Age)
	}
	writeField("Sex", profile.Sex)
	if profile.HeightCm > 0 {
		fmt.Fprintf(b, "- Height: %.0f cm\n", profile.HeightCm)
	}
	if profile.WeightKg > 0 {
		fmt.Fprintf(b, "- Weight: %.1f kg\n", profile.WeightKg)
	}
}
