package extract

import (
	"regexp"
	"strings"
)

// ServerMarker separates the client part of the output from the server part.
const ServerMarker = "Server"

var (
	fieldPattern  = regexp.MustCompile(`([A-Z]\w+?)Version:"([^"\s]+)"`)
	leadingLetter = regexp.MustCompile(`^[a-z]+`)
)

// Structured extracts every Name Version:"value" pair from output such as:
//
//	Client Version: version.Info{GitVersion:"v1.17.1", GoVersion:"go1.13.6"}
//	Server Version: version.Info{GitVersion:"v1.13.12-gke.25", GoVersion:"go1.12.11b4"}
//
// Pairs before the first occurrence of "Server" belong to the client segment, the rest to the server segment.
type Structured struct{}

func (Structured) Extract(output string) ([]Version, error) {
	client, server, _ := Segments(output)
	return append(ScanFields(client, ClientSegment), ScanFields(server, ServerSegment)...), nil
}

// Segments splits the output on the first server marker.
// When the marker is absent the whole output is the client segment and ok is false.
func Segments(output string) (client, server string, ok bool) {
	return strings.Cut(output, ServerMarker)
}

// ScanFields finds every field version within a single segment of output.
func ScanFields(text string, segment Segment) []Version {
	var versions []Version
	for _, match := range fieldPattern.FindAllStringSubmatch(text, -1) {
		versions = append(versions, Version{
			Key:     match[1],
			Value:   NormalizeValue(match[2]),
			Segment: segment,
		})
	}
	return versions
}

// NormalizeValue strips surrounding quotes and any leading run of lower case letters: "go1.12.11b4" -> 1.12.11b4.
// Trailing qualifiers are kept as is.
func NormalizeValue(value string) string {
	value = strings.TrimSpace(strings.Trim(strings.TrimSpace(value), `"`))
	return strings.TrimSpace(leadingLetter.ReplaceAllString(value, ""))
}
