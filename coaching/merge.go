package coaching

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/goodkarma/goodkarma/utils"
)

func logw(msg string, kv ...any) {
	if utils.Sugar != nil {
		utils.Sugar.Warnw(msg, kv...)
	}
}

// ParseResponse validates a raw life-coach service response and unwraps its
// result document. Returns nil for an empty response, an error status, or a
// missing result.
func ParseResponse(raw map[string]any) map[string]any {
	if raw == nil {
		return nil
	}
	if s, _ := raw["status"].(string); s == "error" {
		msg := stringOr(raw["message"], "unknown service error")
		logw("life coach service returned an error", "message", msg)
		return nil
	}
	result, ok := raw["result"].(map[string]any)
	if !ok {
		logw("life coach response missing result document")
		return nil
	}
	return result
}

// ExtractInsights projects an advice document into the flat shape the client
// renders. Missing sub-paths become empty lists. Returns nil only for a nil
// advice document.
func ExtractInsights(advice map[string]any) map[string]any {
	if advice == nil {
		return nil
	}

	analysis := mapOr(advice["analysis"])
	snw := mapOr(analysis["strengthsAndWeaknesses"])
	recs := mapOr(advice["recommendations"])
	plan := mapOr(advice["actionPlan"])

	shortTerm := make([]any, 0)
	for _, r := range listOr(recs["shortTerm"]) {
		rm := mapOr(r)
		shortTerm = append(shortTerm, map[string]any{
			"area":     rm["area"],
			"action":   rm["action"],
			"timeline": rm["timeline"],
		})
	}
	longTerm := make([]any, 0)
	for _, r := range listOr(recs["longTerm"]) {
		rm := mapOr(r)
		longTerm = append(longTerm, map[string]any{
			"area":       rm["area"],
			"strategy":   rm["strategy"],
			"milestones": listOr(rm["milestones"]),
		})
	}

	return map[string]any{
		"strengths":          listOr(snw["strengths"]),
		"improvements":       listOr(snw["areasForImprovement"]),
		"shortTermActions":   shortTerm,
		"longTermStrategies": longTerm,
		"immediateSteps":     listOr(plan["immediate"]),
	}
}

// MergeProgressIntoAdvice folds a progress-update result into an existing
// advice document. Each recognized progress section fully replaces its
// destination field; sections the service did not return leave the copied
// advice untouched. The merge never mutates its inputs and falls back to the
// original advice if anything goes wrong.
func MergeProgressIntoAdvice(progress, advice map[string]any) (merged map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			logw("progress merge failed, keeping existing advice", "reason", r)
			merged = advice
		}
	}()

	merged, err := deepCopy(advice)
	if err != nil {
		logw("progress merge failed, keeping existing advice", "error", err)
		return advice
	}

	analysis := ensureMap(merged, "analysis")
	snw := ensureMap(analysis, "strengthsAndWeaknesses")
	recs := ensureMap(merged, "recommendations")
	plan := ensureMap(merged, "actionPlan")

	if pa, ok := progress["Progress Assessment"].(map[string]any); ok {
		parts := make([]string, 0, len(pa))
		for _, k := range sortedKeys(pa) {
			parts = append(parts, asString(pa[k]))
		}
		analysis["currentSituation"] = strings.Join(parts, " ")
	}
	if aa, ok := progress["Achievement Analysis"].(map[string]any); ok {
		snw["strengths"] = descriptions(aa)
	}
	if se, ok := progress["Setback Evaluation"].(map[string]any); ok {
		snw["areasForImprovement"] = descriptions(se)
	}
	if ar, ok := progress["Adjusted Recommendations"].(map[string]any); ok {
		short := make([]any, 0, len(ar))
		for _, k := range sortedKeys(ar) {
			short = append(short, map[string]any{
				"area":     k,
				"action":   asString(ar[k]),
				"timeline": "1-3 months",
			})
		}
		recs["shortTerm"] = short
	}
	if ns, ok := progress["Next Steps"].(map[string]any); ok {
		steps := make([]any, 0, len(ns))
		for _, k := range sortedKeys(ns) {
			steps = append(steps, ns[k])
		}
		plan["immediate"] = steps
	}

	return merged
}

// deepCopy clones a document through a JSON round trip so the merge can
// rewrite nested maps without touching the stored original.
func deepCopy(m map[string]any) (map[string]any, error) {
	if m == nil {
		return map[string]any{}, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func ensureMap(parent map[string]any, key string) map[string]any {
	if m, ok := parent[key].(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	parent[key] = m
	return m
}

// sortedKeys fixes the iteration order so merged lists and joined strings
// come out the same for the same input.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func descriptions(m map[string]any) []any {
	out := make([]any, 0, len(m))
	for _, k := range sortedKeys(m) {
		out = append(out, mapOr(m[k])["description"])
	}
	return out
}
