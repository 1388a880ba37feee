package karma

import (
	"testing"

	"github.com/goodkarma/goodkarma/deeds"
)

func deedContent(m deeds.Metadata, text string) string {
	return deeds.Encode(m, text)
}

func TestComputeWorkedExample(t *testing.T) {
	posts := []PostActivity{
		{Content: deedContent(deeds.Metadata{DeedType: deeds.Donation}, "Donated food."), LikeCount: 2},
		{Content: deedContent(deeds.Metadata{DeedType: deeds.Donation}, "Donated again."), LikeCount: 0},
		{Content: "a post without any deed metadata", LikeCount: 5},
	}

	stats := Compute(posts)

	if got := stats.Categories[deeds.Donation]; got != 2 {
		t.Errorf("donation count = %d, want 2", got)
	}
	// (10 + 2*2) + (10 + 0); the metadata-less post earns nothing.
	if stats.TotalPoints != 24 {
		t.Errorf("totalPoints = %d, want 24", stats.TotalPoints)
	}
	if stats.PostCount != 3 {
		t.Errorf("postCount = %d, want 3", stats.PostCount)
	}
}

func TestComputeUnrecognizedDeedType(t *testing.T) {
	posts := []PostActivity{
		{Content: deedContent(deeds.Metadata{DeedType: "gardening"}, "Planted trees."), LikeCount: 3},
		{Content: deedContent(deeds.Metadata{DeedType: deeds.Yoga}, "Morning yoga."), LikeCount: 1},
	}

	stats := Compute(posts)

	if stats.TotalPoints != 12 {
		t.Errorf("totalPoints = %d, want 12 (unrecognized type earns nothing)", stats.TotalPoints)
	}
	if stats.Categories[deeds.Yoga] != 1 {
		t.Errorf("yoga count = %d, want 1", stats.Categories[deeds.Yoga])
	}
	if stats.PostCount != 2 {
		t.Errorf("postCount = %d, want 2", stats.PostCount)
	}
	total := 0
	for _, n := range stats.Categories {
		total += n
	}
	if total != 1 {
		t.Errorf("category counts sum = %d, want 1", total)
	}
}

func TestComputeEmpty(t *testing.T) {
	stats := Compute(nil)
	if stats.PostCount != 0 || stats.TotalPoints != 0 {
		t.Errorf("empty input gave %+v", stats)
	}
	if len(stats.Categories) != 5 {
		t.Errorf("categories map has %d keys, want all 5 zeroed", len(stats.Categories))
	}
	for typ, n := range stats.Categories {
		if n != 0 {
			t.Errorf("category %s = %d, want 0", typ, n)
		}
	}
}

func TestComputeMalformedMetadata(t *testing.T) {
	posts := []PostActivity{
		{Content: "<!-- DEED_METADATA:{broken -->\ntext", LikeCount: 9},
	}
	stats := Compute(posts)
	if stats.TotalPoints != 0 {
		t.Errorf("totalPoints = %d, want 0 for malformed metadata", stats.TotalPoints)
	}
	if stats.PostCount != 1 {
		t.Errorf("postCount = %d, want 1", stats.PostCount)
	}
}
