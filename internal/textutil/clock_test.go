package textutil

import "testing"

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
		ok   bool
	}{
		{"integer seconds", "95", 95, true},
		{"fractional seconds", "95.5", 95.5, true},
		{"minutes seconds", "12:34", 754, true},
		{"hours minutes seconds", "1:02:03", 3723, true},
		{"padded", " 10:00 ", 600, true},
		{"empty", "", 0, false},
		{"garbage", "n/a", 0, false},
		{"too many segments", "1:2:3:4", 0, false},
		{"non numeric segment", "12:xx", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSeconds(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseSeconds(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
