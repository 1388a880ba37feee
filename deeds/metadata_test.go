package deeds

import (
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		meta Metadata
		text string
	}{
		{
			name: "full record",
			meta: Metadata{DeedType: Meditation, PrimaryOption: "20min", SecondaryOption: "breathing", AdditionalNotes: "felt calm after"},
			text: "Practiced breathing meditation for 20 minutes.",
		},
		{
			name: "minimal record",
			meta: Metadata{DeedType: Donation},
			text: "Donated books to the local school.",
		},
		{
			name: "multiline display text",
			meta: Metadata{DeedType: Volunteering, PrimaryOption: "food", SecondaryOption: "2hours"},
			text: "Helped at the food bank.\nMet some great people.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			content := Encode(tc.meta, tc.text)
			got := Decode(content)
			if got == nil {
				t.Fatal("Decode returned nil for encoded content")
			}
			if *got != tc.meta {
				t.Errorf("Decode = %+v, want %+v", *got, tc.meta)
			}
			if clean := CleanContent(content); clean != tc.text {
				t.Errorf("CleanContent = %q, want %q", clean, tc.text)
			}
		})
	}
}

func TestDecodeNoMarker(t *testing.T) {
	for _, content := range []string{"", "just a plain post", "<!-- not metadata -->"} {
		if got := Decode(content); got != nil {
			t.Errorf("Decode(%q) = %+v, want nil", content, got)
		}
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	content := "<!-- DEED_METADATA:{not json} -->\nDid something good."
	if got := Decode(content); got != nil {
		t.Errorf("Decode = %+v, want nil for malformed JSON", got)
	}
	// The unparseable marker is still stripped from display text.
	if clean := CleanContent(content); clean != "Did something good." {
		t.Errorf("CleanContent = %q, want marker stripped", clean)
	}
}

func TestCleanContentWithoutMarker(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"  padded text  ":         "padded text",
		"no marker here at all":   "no marker here at all",
		"\n\nleading newlines ok": "leading newlines ok",
	}
	for in, want := range cases {
		if got := CleanContent(in); got != want {
			t.Errorf("CleanContent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanContentStripsOnlyFirstMarker(t *testing.T) {
	content := Encode(Metadata{DeedType: Yoga}, "Ran 5k. <!-- DEED_METADATA:{} -->")
	clean := CleanContent(content)
	if !strings.Contains(clean, "DEED_METADATA") {
		t.Errorf("CleanContent removed more than the first marker: %q", clean)
	}
	if !strings.HasPrefix(clean, "Ran 5k.") {
		t.Errorf("CleanContent = %q, want display text preserved", clean)
	}
}

func TestCatalogCompleteness(t *testing.T) {
	types := Types()
	if len(types) != 5 {
		t.Fatalf("Types() returned %d entries, want 5", len(types))
	}
	for _, typ := range types {
		d, ok := Lookup(typ)
		if !ok {
			t.Fatalf("Lookup(%s) missing", typ)
		}
		if d.Name == "" || d.FocusArea == "" {
			t.Errorf("catalog entry %s missing name or focus area", typ)
		}
		if len(d.Traits) == 0 || len(d.Traits) > 3 {
			t.Errorf("catalog entry %s has %d traits, want 1-3", typ, len(d.Traits))
		}
		if len(d.Values) == 0 || len(d.Values) > 3 {
			t.Errorf("catalog entry %s has %d values, want 1-3", typ, len(d.Values))
		}
	}
	if IsRecognized("gardening") {
		t.Error("IsRecognized accepted an unknown type")
	}
	if got := DisplayName("gardening"); got != "gardening" {
		t.Errorf("DisplayName fallback = %q, want raw type", got)
	}
}

func TestDescribe(t *testing.T) {
	if Describe(nil) != nil {
		t.Error("Describe(nil) should be nil")
	}

	got := Describe(&Metadata{DeedType: Meditation, PrimaryOption: "20min", SecondaryOption: "breathing"})
	want := map[string]string{"deed": "Meditation", "Duration": "20 minutes", "Type": "Breathing"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Describe[%q] = %q, want %q", k, got[k], v)
		}
	}
	if len(got) != len(want) {
		t.Errorf("Describe returned %d entries, want %d", len(got), len(want))
	}

	// Unknown option keys pass through raw; unknown deed types keep the label
	// out entirely.
	got = Describe(&Metadata{DeedType: Donation, PrimaryOption: "crypto"})
	if got["Type"] != "crypto" {
		t.Errorf("unknown option key = %q, want raw passthrough", got["Type"])
	}
	got = Describe(&Metadata{DeedType: "gardening", PrimaryOption: "roses"})
	if got["deed"] != "gardening" || len(got) != 1 {
		t.Errorf("unrecognized deed Describe = %v, want only the raw type", got)
	}
}
