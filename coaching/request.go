package coaching

// Request formatters for the external life-coach service. Stored coaching
// documents are loosely structured JSON, so both formatters work on generic
// maps and fill in defaults for anything the user never supplied.

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func listOr(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return []any{}
}

func mapOr(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// FormatAdviceRequest builds the getLifeAdvice request body. The profile is
// derived from the user's posts, with any stored override fields winning
// per key. Explicit goals win over inferred ones; derived and override focus
// areas are concatenated as-is.
func FormatAdviceRequest(override map[string]any, contents []string) map[string]any {
	derived := DeriveProfile(contents)

	userProfile := make(map[string]any, len(derived.UserProfile))
	for k, v := range derived.UserProfile {
		userProfile[k] = v
	}
	for k, v := range mapOr(override["userProfile"]) {
		userProfile[k] = v
	}

	var goals any
	if g := listOr(override["goals"]); len(g) > 0 {
		goals = g
	} else if implicit := ImplicitGoals(contents); implicit != nil {
		goals = implicit
	} else {
		goals = []Goal{}
	}

	focusAreas := make([]any, 0, len(derived.FocusAreas))
	for _, fa := range derived.FocusAreas {
		focusAreas = append(focusAreas, fa)
	}
	focusAreas = append(focusAreas, listOr(override["focusAreas"])...)

	return map[string]any{
		"userProfile": userProfile,
		"goals":       goals,
		"challenges":  listOr(override["challenges"]),
		"timeframe":   stringOr(override["timeframe"], "6 months"),
		"focusAreas":  focusAreas,
		"lang":        stringOr(override["lang"], "en"),
	}
}

// FormatProgressRequest builds the updateProgress request body from the
// user's progress input and their stored profile document.
func FormatProgressRequest(progress, storedProfile map[string]any) map[string]any {
	initialPlan := map[string]any{
		"timeline": stringOr(storedProfile["timeframe"], "6 months"),
	}
	if g, ok := storedProfile["goals"]; ok && g != nil {
		initialPlan["goals"] = g
	}

	return map[string]any{
		"currentProgress": mapOr(progress["currentProgress"]),
		"initialPlan":     initialPlan,
		"achievements":    listOr(progress["achievements"]),
		"setbacks":        listOr(progress["setbacks"]),
		"nextMilestones":  listOr(progress["nextMilestones"]),
		"lang":            stringOr(progress["lang"], "en"),
	}
}
