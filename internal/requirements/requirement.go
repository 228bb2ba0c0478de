package requirements

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Kind int

const (
	Simple Kind = iota
	Composite
)

func (kind Kind) String() string {
	switch kind {
	case Simple:
		return "simple"
	case Composite:
		return "composite"
	default:
		return fmt.Sprintf("kind(%d)", int(kind))
	}
}

type Facet int

const (
	Client Facet = iota
	Server
)

func (facet Facet) String() string {
	switch facet {
	case Client:
		return "CLIENT"
	case Server:
		return "SERVER"
	default:
		return fmt.Sprintf("FACET(%d)", int(facet))
	}
}

func ParseFacet(value string) (Facet, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "CLIENT":
		return Client, true
	case "SERVER":
		return Server, true
	default:
		return 0, false
	}
}

// FacetVersion is one declared sub-version of a composite requirement, such as CLIENT_GIT:1.17.1.
type FacetVersion struct {
	Facet   Facet
	Field   string
	Version string
}

// Token returns the declaration token for the facet version: CLIENT_GIT:1.17.1
func (fv FacetVersion) Token() string {
	return fv.Facet.String() + "_" + strings.ToUpper(fv.Field) + ":" + fv.Version
}

// Requirement is a single parsed declaration from the requirements file.
type Requirement struct {
	Tool    string
	Kind    Kind
	Version string
	Facets  []FacetVersion
	Line    int
}

// Declaration re-serializes the requirement into the requirements file grammar.
func (req Requirement) Declaration() string {
	if req.Kind == Simple {
		return req.Tool + "=" + req.Version
	}
	tokens := make([]string, len(req.Facets))
	for i, fv := range req.Facets {
		tokens[i] = fv.Token()
	}
	return req.Tool + "=" + strings.Join(tokens, ", ")
}

// Executable is the name the tool is expected to have on the PATH.
func (req Requirement) Executable() string {
	return strings.ToLower(req.Tool)
}

func (req Requirement) FacetsOf(facet Facet) []FacetVersion {
	var result []FacetVersion
	for _, fv := range req.Facets {
		if fv.Facet == facet {
			result = append(result, fv)
		}
	}
	return result
}

// Declarations is the result of parsing a complete requirements file.
// Diagnostics holds every line or token that was skipped, in file order.
type Declarations struct {
	Requirements []Requirement
	Diagnostics  []error
}

// Capitalize upper-cases the first letter of field and lower-cases the rest: GIT -> Git.
func Capitalize(field string) string {
	if field == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(field)
	return string(unicode.ToUpper(first)) + strings.ToLower(field[size:])
}
