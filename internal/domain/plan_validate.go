package domain

import (
	"encoding/json"
	"fmt"
)

// ValidationError reports the first schema violation found while walking a
// generated workout plan. Path is the exact field location, e.g.
// "days[2].exercises[0].sets".
type ValidationError struct {
	Path   string
	Reason string // e.g. "must be a number"
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Path, e.Reason)
}

func violation(path, reason string) *ValidationError {
	return &ValidationError{Path: path, Reason: reason}
}

// ValidateWorkoutPlan structurally validates raw model output against the
// workout plan schema and returns the typed, normalized plan. Validation
// walks every day and every exercise and fails on the first violated field
// path. Rest days are permitted to omit their exercises (normalized to an
// empty slice); all other days must carry a non-empty, fully typed exercises
// array.
func ValidateWorkoutPlan(raw []byte) (*WorkoutPlan, error) {
	var root any
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("plan is not valid JSON: %w", err)
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return nil, violation("plan", "must be an object")
	}

	plan := &WorkoutPlan{}

	// The location enum (home/gym/outdoor) is deliberately not enforced;
	// only the type is checked. The enum lives in the prompt contract.
	if v, present := obj["location"]; present && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, violation("location", "must be a string")
		}
		plan.Location = s
	}

	if v, present := obj["availableEquipment"]; present && v != nil {
		arr, ok := v.([]any)
		if !ok {
			return nil, violation("availableEquipment", "must be an array")
		}
		plan.AvailableEquipment = make([]string, 0, len(arr))
		for i, item := range arr {
			s, ok := item.(string)
			if !ok {
				return nil, violation(fmt.Sprintf("availableEquipment[%d]", i), "must be a string")
			}
			plan.AvailableEquipment = append(plan.AvailableEquipment, s)
		}
	}

	if v, present := obj["generalNotes"]; present && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, violation("generalNotes", "must be a string")
		}
		plan.GeneralNotes = s
	}

	daysRaw, ok := obj["days"].([]any)
	if !ok || len(daysRaw) == 0 {
		return nil, violation("days", "must be a non-empty array")
	}

	plan.Days = make([]PlanDay, 0, len(daysRaw))
	for i, dayRaw := range daysRaw {
		day, err := validateDay(fmt.Sprintf("days[%d]", i), dayRaw)
		if err != nil {
			return nil, err
		}
		plan.Days = append(plan.Days, *day)
	}

	return plan, nil
}

func validateDay(path string, raw any) (*PlanDay, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, violation(path, "must be an object")
	}

	day := &PlanDay{Exercises: []PlanExercise{}}

	idx, ok := asNumber(obj["dayIndex"])
	if !ok {
		return nil, violation(path+".dayIndex", "must be a number")
	}
	day.DayIndex = int(idx)

	var err error
	if day.Label, err = optionalString(path+".label", obj["label"]); err != nil {
		return nil, err
	}
	if day.Focus, err = optionalString(path+".focus", obj["focus"]); err != nil {
		return nil, err
	}
	if day.Notes, err = optionalString(path+".notes", obj["notes"]); err != nil {
		return nil, err
	}

	if v, present := obj["isRestDay"]; present && v != nil {
		b, ok := v.(bool)
		if !ok {
			return nil, violation(path+".isRestDay", "must be a boolean")
		}
		day.IsRestDay = b
	}

	exRaw, present := obj["exercises"]
	if day.IsRestDay {
		// Rest days may omit, null out or empty the exercises list.
		if !present || exRaw == nil {
			return day, nil
		}
		arr, ok := exRaw.([]any)
		if !ok {
			return nil, violation(path+".exercises", "must be an array")
		}
		for i, item := range arr {
			ex, err := validateExercise(fmt.Sprintf("%s.exercises[%d]", path, i), item)
			if err != nil {
				return nil, err
			}
			day.Exercises = append(day.Exercises, *ex)
		}
		return day, nil
	}

	arr, ok := exRaw.([]any)
	if !ok || len(arr) == 0 {
		return nil, violation(path+".exercises", "must be a non-empty array")
	}
	for i, item := range arr {
		ex, err := validateExercise(fmt.Sprintf("%s.exercises[%d]", path, i), item)
		if err != nil {
			return nil, err
		}
		day.Exercises = append(day.Exercises, *ex)
	}
	return day, nil
}

func validateExercise(path string, raw any) (*PlanExercise, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, violation(path, "must be an object")
	}

	ex := &PlanExercise{}

	name, ok := obj["name"].(string)
	if !ok || name == "" {
		return nil, violation(path+".name", "must be a non-empty string")
	}
	ex.Name = name

	var err error
	if ex.Equipment, err = optionalString(path+".equipment", obj["equipment"]); err != nil {
		return nil, err
	}

	sets, ok := asNumber(obj["sets"])
	if !ok {
		return nil, violation(path+".sets", "must be a number")
	}
	ex.Sets = int(sets)

	reps, ok := obj["reps"].(string)
	if !ok {
		return nil, violation(path+".reps", "must be a string")
	}
	ex.Reps = reps

	rest, ok := asNumber(obj["restSeconds"])
	if !ok {
		return nil, violation(path+".restSeconds", "must be a number")
	}
	ex.RestSeconds = int(rest)

	order, ok := asNumber(obj["order"])
	if !ok {
		return nil, violation(path+".order", "must be a number")
	}
	ex.Order = int(order)

	if ex.Tempo, err = optionalString(path+".tempo", obj["tempo"]); err != nil {
		return nil, err
	}
	if ex.Notes, err = optionalString(path+".notes", obj["notes"]); err != nil {
		return nil, err
	}
	if ex.ImageURL, err = optionalString(path+".imageUrl", obj["imageUrl"]); err != nil {
		return nil, err
	}

	return ex, nil
}

func optionalString(path string, v any) (string, error) {
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", violation(path, "must be a string")
	}
	return s, nil
}

func asNumber(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
