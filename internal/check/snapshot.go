package check

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/yokecd/toolcheck/internal/reconcile"
	"github.com/yokecd/toolcheck/internal/requirements"
)

// Observed returns the requirement as it would be declared to match the machine.
// Versions that could not be observed keep their declared value.
func (outcome Outcome) Observed() requirements.Requirement {
	req := outcome.Requirement
	req.Facets = slices.Clone(req.Facets)

	if req.Kind == requirements.Simple {
		if len(outcome.Rows) > 0 && isVersion(outcome.Rows[0].Observed) {
			req.Version = outcome.Rows[0].Observed
		}
		return req
	}

	for i, fv := range req.Facets {
		label := reconcile.FacetLabel(req.Tool, fv)
		for _, row := range outcome.Rows {
			if row.Label == label && isVersion(row.Observed) {
				req.Facets[i].Version = row.Observed
			}
		}
	}

	return req
}

func isVersion(value string) bool {
	switch value {
	case "", reconcile.NotInstalled, reconcile.NotConfigured, reconcile.Unparsable:
		return false
	default:
		return true
	}
}

// Snapshot rewrites the declared requirements file so that every parsed declaration carries the observed versions.
// Comments, blank lines and lines that failed to parse are left untouched.
func (result Result) Snapshot(declared string) string {
	lines := strings.Split(declared, "\n")
	for _, outcome := range result.Outcomes {
		index := outcome.Requirement.Line - 1
		if index < 0 || index >= len(lines) {
			continue
		}
		if observed := outcome.Observed(); !slices.Equal(observed.Facets, outcome.Requirement.Facets) || observed.Version != outcome.Requirement.Version {
			lines[index] = observed.Declaration()
		}
	}
	return strings.Join(lines, "\n")
}

// Diff renders a unified diff between the declared requirements file and its snapshot.
// An empty string means the machine matches every observable declaration.
func (result Result) Diff(name, declared string, context int) (string, error) {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(declared),
		B:        difflib.SplitLines(result.Snapshot(declared)),
		FromFile: name,
		ToFile:   name + " (observed)",
		Context:  context,
	})
	if err != nil {
		return "", fmt.Errorf("failed to compute diff: %w", err)
	}
	return diff, nil
}
