package coaching

import (
	"reflect"
	"testing"

	"github.com/goodkarma/goodkarma/deeds"
)

func deedPost(t deeds.Type) string {
	return deeds.Encode(deeds.Metadata{DeedType: t}, "logged a "+string(t)+" session")
}

func TestDeriveProfileRanking(t *testing.T) {
	contents := []string{
		deedPost(deeds.Meditation),
		deedPost(deeds.Meditation),
		deedPost(deeds.Meditation),
		deedPost(deeds.Volunteering),
		deedPost(deeds.Volunteering),
	}

	p := DeriveProfile(contents)

	wantTraits := []string{"mindful", "calm", "reflective", "compassionate", "generous"}
	if got := p.UserProfile["personalityTraits"]; !reflect.DeepEqual(got, wantTraits) {
		t.Errorf("personalityTraits = %v, want %v", got, wantTraits)
	}
	wantValues := []string{"inner peace", "mindfulness", "presence", "community", "service"}
	if got := p.UserProfile["values"]; !reflect.DeepEqual(got, wantValues) {
		t.Errorf("values = %v, want %v", got, wantValues)
	}
	if want := []string{"mindfulness", "contribution"}; !reflect.DeepEqual(p.FocusAreas, want) {
		t.Errorf("FocusAreas = %v, want %v", p.FocusAreas, want)
	}
	if want := []string{"Meditation", "Volunteering"}; !reflect.DeepEqual(p.UserProfile["interests"], want) {
		t.Errorf("interests = %v, want %v", p.UserProfile["interests"], want)
	}
}

func TestDeriveProfileTieBreak(t *testing.T) {
	// Equal counts fall back to catalog declaration order, so meditation
	// outranks donation.
	p := DeriveProfile([]string{deedPost(deeds.Donation), deedPost(deeds.Meditation)})
	if want := []string{"mindfulness", "generosity"}; !reflect.DeepEqual(p.FocusAreas, want) {
		t.Errorf("FocusAreas = %v, want %v", p.FocusAreas, want)
	}
}

func TestDeriveProfileDefault(t *testing.T) {
	for _, contents := range [][]string{nil, {"plain post, no marker"}} {
		p := DeriveProfile(contents)
		if want := []string{"growth-oriented"}; !reflect.DeepEqual(p.UserProfile["personalityTraits"], want) {
			t.Errorf("personalityTraits = %v, want %v", p.UserProfile["personalityTraits"], want)
		}
		if want := []string{"personal growth"}; !reflect.DeepEqual(p.UserProfile["values"], want) {
			t.Errorf("values = %v, want %v", p.UserProfile["values"], want)
		}
		if want := []string{"self-improvement"}; !reflect.DeepEqual(p.UserProfile["interests"], want) {
			t.Errorf("interests = %v, want %v", p.UserProfile["interests"], want)
		}
		if want := []string{"personal_growth"}; !reflect.DeepEqual(p.FocusAreas, want) {
			t.Errorf("FocusAreas = %v, want %v", p.FocusAreas, want)
		}
	}
}

func TestImplicitGoals(t *testing.T) {
	contents := []string{
		deedPost(deeds.Meditation),
		deedPost(deeds.Meditation),
		deedPost(deeds.Meditation),
		deedPost(deeds.Volunteering),
		deedPost(deeds.Volunteering),
	}

	goals := ImplicitGoals(contents)
	if len(goals) != 3 {
		t.Fatalf("got %d goals, want 3: %v", len(goals), goals)
	}

	want := []Goal{
		{Area: "mindfulness", Description: "Maintain consistent meditation practice", Priority: "high", Timeline: "3 months"},
		{Area: "contribution", Description: "Increase volunteering activity", Priority: "medium", Timeline: "6 months"},
		{Area: "personal_growth", Description: "Explore journaling practice", Priority: "low", Timeline: "6 months"},
	}
	if !reflect.DeepEqual(goals, want) {
		t.Errorf("goals = %v, want %v", goals, want)
	}
}

func TestImplicitGoalsSingleType(t *testing.T) {
	// One meditation post: the maintain goal takes meditation, and no other
	// type has a nonzero count, so there is no increase goal.
	goals := ImplicitGoals([]string{deedPost(deeds.Meditation)})
	if len(goals) != 2 {
		t.Fatalf("got %d goals, want 2: %v", len(goals), goals)
	}
	if goals[0].Description != "Maintain consistent meditation practice" {
		t.Errorf("first goal = %+v", goals[0])
	}
	if goals[1].Description != "Explore journaling practice" || goals[1].Priority != "low" {
		t.Errorf("second goal = %+v", goals[1])
	}
}

func TestImplicitGoalsEmpty(t *testing.T) {
	if goals := ImplicitGoals(nil); goals != nil {
		t.Errorf("expected no goals, got %v", goals)
	}
}
