package prompt

import (
	"regexp"
	"strings"

	"promptdesk/internal/models"
)

// trailingMarker closes out the final line of a prose answer.
const trailingMarker = " 👋"

var bulletPrefix = regexp.MustCompile(`^\s*[-–•]?\s*`)

// Format turns a raw model answer into its display form. Code answers are
// the identity transform; prose answers are split into lines, stripped of
// a single leading bullet marker, blank lines dropped, and the trailing
// marker appended to the last line. Pure: stored raw answers re-render to
// the same output every time.
func Format(raw string, kind QueryKind) models.RenderedAnswer {
	if kind == KindCode {
		return models.RenderedAnswer{IsCode: true, Code: raw}
	}

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lines = append(lines, bulletPrefix.ReplaceAllString(trimmed, ""))
	}
	if len(lines) > 0 {
		lines[len(lines)-1] += trailingMarker
	}
	return models.RenderedAnswer{Lines: lines}
}
