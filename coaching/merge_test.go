package coaching

import (
	"reflect"
	"testing"
)

func TestParseResponse(t *testing.T) {
	result := map[string]any{"analysis": map[string]any{}}

	if got := ParseResponse(nil); got != nil {
		t.Errorf("nil response parsed to %v", got)
	}
	if got := ParseResponse(map[string]any{"status": "error", "message": "quota exceeded"}); got != nil {
		t.Errorf("error response parsed to %v", got)
	}
	if got := ParseResponse(map[string]any{"status": "success"}); got != nil {
		t.Errorf("response without result parsed to %v", got)
	}
	got := ParseResponse(map[string]any{"status": "success", "result": result})
	if !reflect.DeepEqual(got, result) {
		t.Errorf("result = %v, want %v", got, result)
	}
}

func TestExtractInsights(t *testing.T) {
	advice := map[string]any{
		"analysis": map[string]any{
			"strengthsAndWeaknesses": map[string]any{
				"strengths":           []any{"consistent practice"},
				"areasForImprovement": []any{"sleep"},
			},
		},
		"recommendations": map[string]any{
			"shortTerm": []any{
				map[string]any{"area": "mindfulness", "action": "meditate daily", "timeline": "1 month", "extra": "dropped"},
			},
			"longTerm": []any{
				map[string]any{"area": "health", "strategy": "build routine"},
			},
		},
		"actionPlan": map[string]any{"immediate": []any{"set a reminder"}},
	}

	insights := ExtractInsights(advice)
	if insights == nil {
		t.Fatal("insights is nil")
	}
	if want := []any{"consistent practice"}; !reflect.DeepEqual(insights["strengths"], want) {
		t.Errorf("strengths = %v, want %v", insights["strengths"], want)
	}
	if want := []any{"sleep"}; !reflect.DeepEqual(insights["improvements"], want) {
		t.Errorf("improvements = %v, want %v", insights["improvements"], want)
	}
	short := insights["shortTermActions"].([]any)
	if len(short) != 1 {
		t.Fatalf("shortTermActions = %v", short)
	}
	if m := short[0].(map[string]any); m["action"] != "meditate daily" || len(m) != 3 {
		t.Errorf("short term action = %v, want three projected fields", m)
	}
	long := insights["longTermStrategies"].([]any)
	if m := long[0].(map[string]any); !reflect.DeepEqual(m["milestones"], []any{}) {
		t.Errorf("milestones = %v, want empty list default", m["milestones"])
	}
	if want := []any{"set a reminder"}; !reflect.DeepEqual(insights["immediateSteps"], want) {
		t.Errorf("immediateSteps = %v, want %v", insights["immediateSteps"], want)
	}
}

func TestExtractInsightsEmptyAdvice(t *testing.T) {
	if got := ExtractInsights(nil); got != nil {
		t.Errorf("nil advice gave %v", got)
	}
	insights := ExtractInsights(map[string]any{})
	for _, key := range []string{"strengths", "improvements", "immediateSteps"} {
		if got := insights[key]; !reflect.DeepEqual(got, []any{}) {
			t.Errorf("%s = %v, want empty list", key, got)
		}
	}
}

func progressFixture() map[string]any {
	return map[string]any{
		"Progress Assessment": map[string]any{
			"mindfulness":     "strong daily habit",
			"physical_health": "improving steadily",
		},
		"Achievement Analysis": map[string]any{
			"mindfulness": map[string]any{"description": "kept a 30 day streak"},
		},
		"Setback Evaluation": map[string]any{
			"physical_health": map[string]any{"description": "missed two weeks of yoga"},
		},
		"Adjusted Recommendations": map[string]any{
			"mindfulness": "add an evening session",
		},
		"Next Steps": map[string]any{
			"a": "book a class",
			"b": "review journal",
		},
	}
}

func TestMergeProgressIntoAdvice(t *testing.T) {
	advice := map[string]any{
		"analysis": map[string]any{
			"currentSituation": "starting out",
			"strengthsAndWeaknesses": map[string]any{
				"strengths": []any{"old strength"},
			},
		},
		"recommendations": map[string]any{
			"shortTerm": []any{"old rec"},
			"longTerm":  []any{"keep training"},
		},
		"summary": "untouched",
	}

	merged := MergeProgressIntoAdvice(progressFixture(), advice)

	analysis := merged["analysis"].(map[string]any)
	if want := "strong daily habit improving steadily"; analysis["currentSituation"] != want {
		t.Errorf("currentSituation = %v, want %q", analysis["currentSituation"], want)
	}
	snw := analysis["strengthsAndWeaknesses"].(map[string]any)
	if want := []any{"kept a 30 day streak"}; !reflect.DeepEqual(snw["strengths"], want) {
		t.Errorf("strengths = %v, want full replacement %v", snw["strengths"], want)
	}
	if want := []any{"missed two weeks of yoga"}; !reflect.DeepEqual(snw["areasForImprovement"], want) {
		t.Errorf("areasForImprovement = %v, want %v", snw["areasForImprovement"], want)
	}
	recs := merged["recommendations"].(map[string]any)
	short := recs["shortTerm"].([]any)
	if len(short) != 1 {
		t.Fatalf("shortTerm = %v", short)
	}
	rec := short[0].(map[string]any)
	if rec["area"] != "mindfulness" || rec["action"] != "add an evening session" || rec["timeline"] != "1-3 months" {
		t.Errorf("shortTerm rec = %v", rec)
	}
	// Fields no progress section covers survive the copy.
	if !reflect.DeepEqual(recs["longTerm"], []any{"keep training"}) {
		t.Errorf("longTerm = %v, want carried over", recs["longTerm"])
	}
	if merged["summary"] != "untouched" {
		t.Errorf("summary = %v, want carried over", merged["summary"])
	}
	plan := merged["actionPlan"].(map[string]any)
	if want := []any{"book a class", "review journal"}; !reflect.DeepEqual(plan["immediate"], want) {
		t.Errorf("immediate = %v, want %v", plan["immediate"], want)
	}

	// Inputs stay untouched.
	if got := advice["analysis"].(map[string]any)["currentSituation"]; got != "starting out" {
		t.Errorf("original advice mutated: currentSituation = %v", got)
	}
}

func TestMergeProgressIntoAdviceEmptyAdvice(t *testing.T) {
	merged := MergeProgressIntoAdvice(progressFixture(), nil)
	if merged == nil {
		t.Fatal("merged is nil")
	}
	analysis := merged["analysis"].(map[string]any)
	if analysis["currentSituation"] == "" {
		t.Error("currentSituation not set on empty advice")
	}
}

func TestMergeProgressPartialSections(t *testing.T) {
	advice := map[string]any{
		"analysis": map[string]any{"currentSituation": "steady"},
	}
	progress := map[string]any{
		"Next Steps": map[string]any{"a": "walk more"},
	}

	merged := MergeProgressIntoAdvice(progress, advice)

	analysis := merged["analysis"].(map[string]any)
	if analysis["currentSituation"] != "steady" {
		t.Errorf("currentSituation = %v, want untouched", analysis["currentSituation"])
	}
	plan := merged["actionPlan"].(map[string]any)
	if want := []any{"walk more"}; !reflect.DeepEqual(plan["immediate"], want) {
		t.Errorf("immediate = %v, want %v", plan["immediate"], want)
	}
}

func TestMergeProgressDeterministic(t *testing.T) {
	a := MergeProgressIntoAdvice(progressFixture(), nil)
	b := MergeProgressIntoAdvice(progressFixture(), nil)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("merge is not deterministic:\n%v\n%v", a, b)
	}
}
