package reconcile

import (
	"cmp"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/yokecd/toolcheck/internal/extract"
	"github.com/yokecd/toolcheck/internal/probe"
	"github.com/yokecd/toolcheck/internal/requirements"
)

const (
	NotInstalled  = probe.NotInstalled
	NotConfigured = "not configured"
	Unparsable    = "unknown"
)

type Drift string

const (
	DriftNone  Drift = ""
	DriftOlder Drift = "older"
	DriftNewer Drift = "newer"
)

// Row is one line of the compliance report.
type Row struct {
	Label    string `json:"software" yaml:"software"`
	Required string `json:"required" yaml:"required"`
	Observed string `json:"observed" yaml:"observed"`
	Location string `json:"location" yaml:"location"`
	Matched  bool   `json:"matched" yaml:"matched"`
	Drift    Drift  `json:"drift,omitempty" yaml:"drift,omitempty"`
	Note     string `json:"note,omitempty" yaml:"note,omitempty"`
}

type Mode int

const (
	// Strict reports what was observed on the machine.
	Strict Mode = iota

	// Legacy is the lenient reconciliation of the first releases: configured composite server fields
	// and composite client fields missing from the output report the declared version as observed.
	Legacy
)

type options struct {
	mode Mode
}

type Option func(*options)

func WithMode(mode Mode) Option {
	return func(opts *options) {
		opts.mode = mode
	}
}

// Reconcile aligns a requirement against what was found on the machine.
// extractErr is the error returned by the extraction strategy, if any.
func Reconcile(req requirements.Requirement, result probe.Result, versions []extract.Version, extractErr error, opts ...Option) []Row {
	var options options
	for _, apply := range opts {
		apply(&options)
	}

	if !result.Found {
		return notInstalled(req)
	}

	location := strings.TrimSpace(result.Location)

	if req.Kind == requirements.Simple {
		row := Row{
			Label:    req.Tool,
			Required: req.Version,
			Observed: Unparsable,
			Location: location,
		}
		if extractErr != nil || len(versions) == 0 {
			row.Note = fmt.Sprintf("could not determine installed version: %v", cmp.Or(extractErr, extract.ErrVersionNotFound))
			return []Row{row}
		}
		row.Observed = versions[0].Value
		return []Row{compare(row)}
	}

	rows := make([]Row, 0, len(req.Facets))
	for _, fv := range orderedFacets(req) {
		row := Row{
			Label:    FacetLabel(req.Tool, fv),
			Required: fv.Version,
			Location: location,
		}

		version, err := extract.Lookup(versions, extract.SegmentOf(fv.Facet), fv.Field)

		switch {
		case err == nil && options.mode == Legacy && fv.Facet == requirements.Server:
			row.Observed = fv.Version
			row.Matched = true
		case err == nil:
			row.Observed = version.Value
			row = compare(row)
		case fv.Facet == requirements.Server:
			row.Observed = NotConfigured
			row.Note = fmt.Sprintf("%s server not configured", req.Tool)
		case options.mode == Legacy:
			row.Observed = fv.Version
			row.Matched = true
		default:
			row.Observed = Unparsable
			row.Note = fmt.Sprintf("%s %s %s version not reported", req.Tool, strings.ToLower(fv.Facet.String()), fv.Field)
		}

		rows = append(rows, row)
	}

	return rows
}

// FacetLabel is the display name of a composite sub-field: KUBECTL GIT (CLIENT)
func FacetLabel(tool string, fv requirements.FacetVersion) string {
	return fmt.Sprintf("%s %s (%s)", tool, strings.ToUpper(fv.Field), fv.Facet)
}

func notInstalled(req requirements.Requirement) []Row {
	if req.Kind == requirements.Simple {
		return []Row{
			{
				Label:    req.Tool,
				Required: req.Version,
				Observed: NotInstalled,
				Location: NotInstalled,
				Note:     fmt.Sprintf("%s not installed", req.Tool),
			},
		}
	}

	var rows []Row
	for _, fv := range orderedFacets(req) {
		rows = append(rows, Row{
			Label:    FacetLabel(req.Tool, fv),
			Required: fv.Version,
			Observed: NotInstalled,
			Location: NotInstalled,
			Note:     fmt.Sprintf("%s not installed", req.Tool),
		})
	}
	return rows
}

// orderedFacets returns client facets before server facets regardless of how the requirement was constructed.
func orderedFacets(req requirements.Requirement) []requirements.FacetVersion {
	return append(req.FacetsOf(requirements.Client), req.FacetsOf(requirements.Server)...)
}

func compare(row Row) Row {
	row.Matched = row.Required == row.Observed
	if !row.Matched {
		row.Drift = DriftOf(row.Observed, row.Required)
	}
	return row
}

// DriftOf reports whether the observed version is older or newer than the required one.
// It returns DriftNone when either value is not a valid semantic version.
func DriftOf(observed, required string) Drift {
	o, r := canonical(observed), canonical(required)
	if !semver.IsValid(o) || !semver.IsValid(r) {
		return DriftNone
	}
	switch semver.Compare(o, r) {
	case -1:
		return DriftOlder
	case 1:
		return DriftNewer
	default:
		return DriftNone
	}
}

func canonical(version string) string {
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version
}
