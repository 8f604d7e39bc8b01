package reconcile

import (
	"fmt"
	"strings"
)

// Sentinel lines delimiting the managed region inside shared compose
// files. Matching is exact on the trimmed line, never regex or line
// numbers, so sentinel-looking text elsewhere in the file cannot misfire.
const (
	BeginMarker = "# >>> services (generated from services.yml)"
	EndMarker   = "# <<< services (generated from services.yml)"
)

// SpliceMarkers replaces the managed region of content with block,
// keeping everything before the begin sentinel and after the end sentinel
// untouched. The sentinels themselves stay in place.
//
// A missing, duplicated, or inverted sentinel pair is a hard error: the
// file is not safe to rewrite.
func SpliceMarkers(content []byte, block []string) ([]byte, error) {
	lines := strings.Split(string(content), "\n")

	begin, end := -1, -1
	for i, line := range lines {
		switch strings.TrimSpace(line) {
		case BeginMarker:
			if begin != -1 {
				return nil, fmt.Errorf("duplicate begin marker at lines %d and %d", begin+1, i+1)
			}
			begin = i
		case EndMarker:
			if end != -1 {
				return nil, fmt.Errorf("duplicate end marker at lines %d and %d", end+1, i+1)
			}
			end = i
		}
	}
	if begin == -1 {
		return nil, fmt.Errorf("begin marker %q not found", BeginMarker)
	}
	if end == -1 {
		return nil, fmt.Errorf("end marker %q not found", EndMarker)
	}
	if begin >= end {
		return nil, fmt.Errorf("begin marker (line %d) appears after end marker (line %d)", begin+1, end+1)
	}

	spliced := make([]string, 0, begin+1+len(block)+len(lines)-end)
	spliced = append(spliced, lines[:begin+1]...)
	spliced = append(spliced, block...)
	spliced = append(spliced, lines[end:]...)
	return []byte(strings.Join(spliced, "\n")), nil
}
