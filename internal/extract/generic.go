package extract

import (
	"fmt"
	"regexp"
)

var dottedNumeric = regexp.MustCompile(`\d+(\.\d+)+`)

// Generic extracts the first dotted numeric version, such as 1.5.4 in "Packer v1.5.4".
type Generic struct{}

func (Generic) Extract(output string) ([]Version, error) {
	match := dottedNumeric.FindString(output)
	if match == "" {
		return nil, fmt.Errorf("%w in output %q", ErrVersionNotFound, truncate(output, 64))
	}
	return []Version{{Value: match, Segment: ClientSegment}}, nil
}

func truncate(value string, size int) string {
	if len(value) <= size {
		return value
	}
	return value[:size] + "..."
}
