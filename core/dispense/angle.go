package dispense

import "strings"

var colorAngles = map[string]int{
	"WHITE": 0,
	"CREAM": 30,
	"BROWN": 60,
	"RED":   90,
	"BLUE":  120,
	"GREEN": 150,
}

// UnknownColorAngle is the position used for colors outside the table.
const UnknownColorAngle = 180

// ColorToAngle maps a color name to its compartment angle. Matching is
// case-insensitive.
func ColorToAngle(color string) int {
	if a, ok := colorAngles[strings.ToUpper(strings.TrimSpace(color))]; ok {
		return a
	}
	return UnknownColorAngle
}
