package merger

import "strings"

// ExtractTrackName derives the short label of one track from its display
// name:
//
//	"Joris en de Draak - Water"  -> "Water"
//	"Gemini (Red)"               -> "Red"
//	"Racer Left"                 -> "Left"
//
// Each rule falls through to the next when it yields an empty label; the
// full name is the last resort.
func ExtractTrackName(name string) string {
	if i := strings.LastIndex(name, " - "); i >= 0 {
		if label := strings.TrimSpace(name[i+len(" - "):]); label != "" {
			return label
		}
		// A dangling separator is not a label.
		name = strings.TrimSpace(name[:i])
	}

	if open := strings.LastIndex(name, "("); open >= 0 {
		rest := name[open+1:]
		if end := strings.Index(rest, ")"); end >= 0 {
			if label := strings.TrimSpace(rest[:end]); label != "" {
				return label
			}
		}
	}

	if words := strings.Fields(name); len(words) > 0 {
		return words[len(words)-1]
	}
	return name
}
