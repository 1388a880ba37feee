package coaching

import (
	"reflect"
	"testing"

	"github.com/goodkarma/goodkarma/deeds"
)

func TestFormatAdviceRequestDefaults(t *testing.T) {
	req := FormatAdviceRequest(nil, nil)

	if req["timeframe"] != "6 months" {
		t.Errorf("timeframe = %v, want 6 months", req["timeframe"])
	}
	if req["lang"] != "en" {
		t.Errorf("lang = %v, want en", req["lang"])
	}
	if got := req["challenges"]; !reflect.DeepEqual(got, []any{}) {
		t.Errorf("challenges = %v, want empty list", got)
	}
	if got := req["goals"]; !reflect.DeepEqual(got, []Goal{}) {
		t.Errorf("goals = %v, want empty list", got)
	}
	up, ok := req["userProfile"].(map[string]any)
	if !ok {
		t.Fatalf("userProfile has type %T", req["userProfile"])
	}
	if want := []string{"growth-oriented"}; !reflect.DeepEqual(up["personalityTraits"], want) {
		t.Errorf("personalityTraits = %v, want %v", up["personalityTraits"], want)
	}
	if want := []any{"personal_growth"}; !reflect.DeepEqual(req["focusAreas"], want) {
		t.Errorf("focusAreas = %v, want %v", req["focusAreas"], want)
	}
}

func TestFormatAdviceRequestOverrideWins(t *testing.T) {
	override := map[string]any{
		"userProfile": map[string]any{
			"personalityTraits": []any{"driven"},
			"age":               34.0,
		},
		"goals":      []any{map[string]any{"description": "run a marathon"}},
		"challenges": []any{"time"},
		"timeframe":  "12 months",
		"focusAreas": []any{"career"},
		"lang":       "de",
	}
	contents := []string{deedPost(deeds.Yoga)}

	req := FormatAdviceRequest(override, contents)

	up := req["userProfile"].(map[string]any)
	if want := []any{"driven"}; !reflect.DeepEqual(up["personalityTraits"], want) {
		t.Errorf("personalityTraits = %v, want override %v", up["personalityTraits"], want)
	}
	if up["age"] != 34.0 {
		t.Errorf("age = %v, want 34", up["age"])
	}
	// Keys the override does not name keep their derived values.
	if want := []string{"Yoga/Exercise"}; !reflect.DeepEqual(up["interests"], want) {
		t.Errorf("interests = %v, want derived %v", up["interests"], want)
	}

	if got := req["goals"].([]any); len(got) != 1 {
		t.Errorf("goals = %v, want the explicit goal", got)
	}
	if req["timeframe"] != "12 months" || req["lang"] != "de" {
		t.Errorf("timeframe/lang = %v/%v", req["timeframe"], req["lang"])
	}
	// Derived focus areas come first, then override ones, no dedup.
	if want := []any{"physical_health", "career"}; !reflect.DeepEqual(req["focusAreas"], want) {
		t.Errorf("focusAreas = %v, want %v", req["focusAreas"], want)
	}
}

func TestFormatAdviceRequestImplicitGoals(t *testing.T) {
	contents := []string{deedPost(deeds.Meditation), deedPost(deeds.Meditation), deedPost(deeds.Meditation)}
	req := FormatAdviceRequest(map[string]any{"goals": []any{}}, contents)

	goals, ok := req["goals"].([]Goal)
	if !ok || len(goals) == 0 {
		t.Fatalf("goals = %v, want inferred goals", req["goals"])
	}
	if goals[0].Description != "Maintain consistent meditation practice" {
		t.Errorf("first goal = %+v", goals[0])
	}
}

func TestFormatAdviceRequestDeterministic(t *testing.T) {
	contents := []string{deedPost(deeds.Donation), deedPost(deeds.Journaling)}
	a := FormatAdviceRequest(nil, contents)
	b := FormatAdviceRequest(nil, contents)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("formatter is not deterministic:\n%v\n%v", a, b)
	}
}

func TestFormatProgressRequest(t *testing.T) {
	progress := map[string]any{
		"currentProgress": map[string]any{"mindfulness": "meditating daily"},
		"achievements":    []any{"30 day streak"},
	}
	stored := map[string]any{
		"goals":     []any{map[string]any{"description": "stay calm"}},
		"timeframe": "3 months",
	}

	req := FormatProgressRequest(progress, stored)

	plan := req["initialPlan"].(map[string]any)
	if plan["timeline"] != "3 months" {
		t.Errorf("timeline = %v, want 3 months", plan["timeline"])
	}
	if goals, ok := plan["goals"].([]any); !ok || len(goals) != 1 {
		t.Errorf("initialPlan.goals = %v", plan["goals"])
	}
	if got := req["achievements"].([]any); len(got) != 1 {
		t.Errorf("achievements = %v", got)
	}
	if got := req["currentProgress"].(map[string]any); got["mindfulness"] != "meditating daily" {
		t.Errorf("currentProgress = %v", got)
	}
}

func TestFormatProgressRequestDefaults(t *testing.T) {
	req := FormatProgressRequest(map[string]any{}, map[string]any{})

	plan := req["initialPlan"].(map[string]any)
	if plan["timeline"] != "6 months" {
		t.Errorf("timeline = %v, want 6 months", plan["timeline"])
	}
	if _, ok := plan["goals"]; ok {
		t.Error("initialPlan.goals should be absent when the profile has none")
	}
	for _, key := range []string{"achievements", "setbacks", "nextMilestones"} {
		if got := req[key]; !reflect.DeepEqual(got, []any{}) {
			t.Errorf("%s = %v, want empty list", key, got)
		}
	}
	if got := req["currentProgress"]; !reflect.DeepEqual(got, map[string]any{}) {
		t.Errorf("currentProgress = %v, want empty object", got)
	}
	if req["lang"] != "en" {
		t.Errorf("lang = %v, want en", req["lang"])
	}
}
