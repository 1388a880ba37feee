package deeds

// Type identifies one of the recognized good-deed categories.
type Type string

const (
	Meditation   Type = "meditation"
	Journaling   Type = "journaling"
	Yoga         Type = "yoga"
	Volunteering Type = "volunteering"
	Donation     Type = "donation"
)

// Deed describes a good-deed category: its display name, the coaching
// vocabulary it maps to, and the option labels used when rendering posts.
type Deed struct {
	Name      string
	FocusArea string
	Traits    []string
	Values    []string
	// PrimaryLabel / SecondaryLabel name the two structured options a post of
	// this type carries (e.g. "Duration" / "Type" for meditation).
	PrimaryLabel     string
	SecondaryLabel   string
	PrimaryOptions   map[string]string
	SecondaryOptions map[string]string
}

var durations = map[string]string{
	"5min":  "5 minutes",
	"10min": "10 minutes",
	"15min": "15 minutes",
	"20min": "20 minutes",
	"30min": "30 minutes",
	"45min": "45 minutes",
	"60min": "1 hour",
	"90min": "1.5 hours",
}

var catalog = map[Type]Deed{
	Meditation: {
		Name:           "Meditation",
		FocusArea:      "mindfulness",
		Traits:         []string{"mindful", "calm", "reflective"},
		Values:         []string{"inner peace", "mindfulness", "presence"},
		PrimaryLabel:   "Duration",
		SecondaryLabel: "Type",
		PrimaryOptions: durations,
		SecondaryOptions: map[string]string{
			"mindfulness": "Mindfulness",
			"breathing":   "Breathing",
			"guided":      "Guided",
			"walking":     "Walking",
			"mantra":      "Mantra",
		},
	},
	Journaling: {
		Name:           "Journaling",
		FocusArea:      "personal_growth",
		Traits:         []string{"introspective", "thoughtful", "organized"},
		Values:         []string{"self-awareness", "reflection", "growth"},
		PrimaryLabel:   "Time Spent",
		SecondaryLabel: "Focus",
		PrimaryOptions: durations,
		SecondaryOptions: map[string]string{
			"gratitude":  "Gratitude",
			"goals":      "Goals",
			"reflection": "Reflection",
			"creativity": "Creative Writing",
			"planning":   "Planning",
		},
	},
	Yoga: {
		Name:           "Yoga/Exercise",
		FocusArea:      "physical_health",
		Traits:         []string{"disciplined", "balanced", "health-conscious"},
		Values:         []string{"health", "balance", "discipline"},
		PrimaryLabel:   "Duration",
		SecondaryLabel: "Exercise Type",
		PrimaryOptions: durations,
		SecondaryOptions: map[string]string{
			"yoga":     "Yoga",
			"running":  "Running",
			"walking":  "Walking",
			"cycling":  "Cycling",
			"weights":  "Weight Training",
			"hiit":     "HIIT",
			"swimming": "Swimming",
			"other":    "Other",
		},
	},
	Volunteering: {
		Name:           "Volunteering",
		FocusArea:      "contribution",
		Traits:         []string{"compassionate", "generous", "community-oriented"},
		Values:         []string{"community", "service", "connection"},
		PrimaryLabel:   "Category",
		SecondaryLabel: "Time Spent",
		PrimaryOptions: map[string]string{
			"community":   "Community Service",
			"animals":     "Animal Care",
			"food":        "Food Bank",
			"environment": "Environmental",
			"education":   "Education",
			"health":      "Healthcare",
			"other":       "Other",
		},
		SecondaryOptions: map[string]string{
			"30min":   "30 minutes",
			"1hour":   "1 hour",
			"2hours":  "2 hours",
			"halfday": "Half day",
			"fullday": "Full day",
		},
	},
	Donation: {
		Name:           "Donation",
		FocusArea:      "generosity",
		Traits:         []string{"generous", "altruistic", "supportive"},
		Values:         []string{"generosity", "impact", "support"},
		PrimaryLabel:   "Type",
		SecondaryLabel: "Recipient",
		PrimaryOptions: map[string]string{
			"charity":  "Charity",
			"food":     "Food",
			"clothing": "Clothing",
			"books":    "Books",
			"blood":    "Blood",
			"money":    "Money",
			"other":    "Other",
		},
		SecondaryOptions: map[string]string{
			"disaster":  "Disaster Relief",
			"homeless":  "Homeless Shelter",
			"school":    "School/Education",
			"foodbank":  "Food Bank",
			"medical":   "Medical Research",
			"animal":    "Animal Shelter",
			"community": "Community Center",
			"other":     "Other",
		},
	},
}

// typeOrder fixes the declaration order used for deterministic ranking ties.
var typeOrder = []Type{Meditation, Journaling, Yoga, Volunteering, Donation}

// Types returns the recognized deed types in declaration order.
func Types() []Type {
	out := make([]Type, len(typeOrder))
	copy(out, typeOrder)
	return out
}

// Lookup returns the catalog entry for a deed type. The second return value
// is false for unrecognized types.
func Lookup(t Type) (Deed, bool) {
	d, ok := catalog[t]
	return d, ok
}

// IsRecognized reports whether a deed type is one of the five categories.
func IsRecognized(t Type) bool {
	_, ok := catalog[t]
	return ok
}

// DisplayName returns the human readable name for a deed type, or the raw
// type string when unrecognized.
func DisplayName(t Type) string {
	if d, ok := catalog[t]; ok {
		return d.Name
	}
	return string(t)
}

// Describe resolves a metadata record's option keys against the catalog
// vocabularies, yielding the labels and values a client renders. Unknown
// option keys fall back to the raw key; nil metadata yields nil.
func Describe(m *Metadata) map[string]string {
	if m == nil {
		return nil
	}
	d, ok := catalog[m.DeedType]
	if !ok {
		return map[string]string{"deed": string(m.DeedType)}
	}
	out := map[string]string{"deed": d.Name}
	if m.PrimaryOption != "" {
		v := m.PrimaryOption
		if label, ok := d.PrimaryOptions[v]; ok {
			v = label
		}
		out[d.PrimaryLabel] = v
	}
	if m.SecondaryOption != "" {
		v := m.SecondaryOption
		if label, ok := d.SecondaryOptions[v]; ok {
			v = label
		}
		out[d.SecondaryLabel] = v
	}
	return out
}
