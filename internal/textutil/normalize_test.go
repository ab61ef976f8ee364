package textutil

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Lecture 1", "lecture 1"},
		{"read only tail", "Lecture 1 (Read Only)", "lecture 1"},
		{"duration tail", "Intro Lecture (12:34)", "intro lecture"},
		{"hour duration tail", "Intro Lecture (1:02:34)", "intro lecture"},
		{"numeric id tail", "Intro Lecture - 123456", "intro lecture"},
		{"stacked markers", "Intro Lecture (Read Only) (12:34) - 123456", "intro lecture"},
		{"repeated markers", "Lecture 2 - 123456 - 789012", "lecture 2"},
		{"punctuation", "Week 3: Maps, Slices & Structs!", "week 3 maps slices structs"},
		{"whitespace runs", "  Week   3\tOverview ", "week 3 overview"},
		{"diacritics", "Exposé du Séminaire", "expose du seminaire"},
		{"short id kept", "Quiz - 101", "quiz 101"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Intro Lecture (Read Only) (12:34) - 123456",
		"Week 3: Maps, Slices & Structs!",
		"lecture 1",
		"",
		"Exposé du Séminaire",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestStripNoiseTailOrder(t *testing.T) {
	// Removing the read-only marker first exposes the duration, which in turn
	// exposes the numeric ID.
	got := StripNoiseTail("Systems Overview - 55001 (10:00) (Read Only)")
	if got != "Systems Overview" {
		t.Fatalf("StripNoiseTail = %q, want %q", got, "Systems Overview")
	}
}

func TestCleanHeaderID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Essay 1 (1234567)", "Essay 1"},
		{"Essay 1 - 1234567", "Essay 1"},
		{"Essay 1 (123)", "Essay 1 (123)"},
		{"Essay 1 - 12", "Essay 1 - 12"},
		{"Mid-term Review", "Mid-term Review"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanHeaderID(tt.in); got != tt.want {
			t.Errorf("CleanHeaderID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
