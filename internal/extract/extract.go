// Package extract pulls version strings out of the free-form output of a tool's version command.
//
// Two strategies exist. Generic finds the first dotted numeric token and serves tools that report a single version.
// Structured understands output made of several Name Version:"value" pairs, optionally split into a client part and
// a server part, as printed by kubectl.
package extract

import (
	"errors"

	"github.com/yokecd/toolcheck/internal/requirements"
)

var (
	ErrVersionNotFound = errors.New("version not found")
	ErrFieldNotFound   = errors.New("field not found")
)

type Segment int

const (
	ClientSegment Segment = iota
	ServerSegment
)

func (segment Segment) String() string {
	if segment == ServerSegment {
		return "server"
	}
	return "client"
}

// SegmentOf maps a requirement facet onto the output segment it is reported in.
func SegmentOf(facet requirements.Facet) Segment {
	if facet == requirements.Server {
		return ServerSegment
	}
	return ClientSegment
}

// Version is a single version found in a tool's output. Key is empty for generic extraction.
type Version struct {
	Key     string
	Value   string
	Segment Segment
}

type Strategy interface {
	Extract(output string) ([]Version, error)
}

// For returns the extraction strategy matching the requirement kind.
func For(kind requirements.Kind) Strategy {
	if kind == requirements.Composite {
		return Structured{}
	}
	return Generic{}
}

// Lookup finds the version for key within the given segment.
func Lookup(versions []Version, segment Segment, key string) (Version, error) {
	for _, version := range versions {
		if version.Segment == segment && version.Key == key {
			return version, nil
		}
	}
	return Version{}, ErrFieldNotFound
}
