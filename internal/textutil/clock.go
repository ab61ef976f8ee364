package textutil

import (
	"strconv"
	"strings"
)

// ParseSeconds interprets a duration or view-time cell as seconds. Source
// exports are inconsistent: some emit plain numbers ("95", "95.5"), others
// clock strings ("12:34" or "1:02:03"). Returns false when the cell is empty
// or unparseable, so callers can treat the value as missing rather than zero.
func ParseSeconds(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	values := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return 0, false
		}
		values[i] = v
	}
	if len(values) == 3 {
		return values[0]*3600 + values[1]*60 + values[2], true
	}
	return values[0]*60 + values[1], true
}
