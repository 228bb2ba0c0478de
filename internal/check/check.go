// Package check drives a compliance run: every requirement is probed, its version extracted and reconciled,
// one requirement at a time, and the resulting rows are accumulated in declaration order.
package check

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/davidmdm/ansi"
	"github.com/davidmdm/x/xerr"
	"github.com/davidmdm/x/xruntime"

	"github.com/yokecd/toolcheck/internal"
	"github.com/yokecd/toolcheck/internal/extract"
	"github.com/yokecd/toolcheck/internal/probe"
	"github.com/yokecd/toolcheck/internal/reconcile"
	"github.com/yokecd/toolcheck/internal/requirements"
)

var (
	yellow = ansi.MakeStyle(ansi.FgYellow)
	red    = ansi.MakeStyle(ansi.FgRed)
	green  = ansi.MakeStyle(ansi.FgGreen)
)

const separator = "---------------------------------------------"

// ServerVersioner reports server facet versions when the composite tool's own output lacks them.
type ServerVersioner interface {
	ServerVersions(ctx context.Context) ([]extract.Version, error)
}

type Params struct {
	Declarations requirements.Declarations
	Prober       probe.Prober
	Mode         reconcile.Mode

	// Server is optional. When set, it fills in missing server facets of composite requirements.
	Server ServerVersioner
}

// Result accumulates the rows of a single run. Rows are in declaration order.
type Result struct {
	Rows        []reconcile.Row
	Outcomes    []Outcome
	Diagnostics []error
}

// Outcome ties the rows of a run back to the requirement that produced them.
type Outcome struct {
	Requirement requirements.Requirement
	Rows        []reconcile.Row
}

func (result Result) Mismatches() []reconcile.Row {
	var rows []reconcile.Row
	for _, row := range result.Rows {
		if !row.Matched {
			rows = append(rows, row)
		}
	}
	return rows
}

// Err aggregates the diagnostics of the run in the order they were encountered.
// It is nil when nothing was skipped or degraded.
func (result Result) Err() error {
	return xerr.MultiErrOrderedFrom("diagnostics", result.Diagnostics...)
}

func (result Result) Ok() bool {
	return len(result.Mismatches()) == 0
}

// Run checks every declared requirement sequentially. Progress and per-row diagnostics are written to the
// context's stderr as they are encountered. Only cancellation of ctx stops the run early.
func Run(ctx context.Context, params Params) (*Result, error) {
	defer internal.DebugTimer(ctx, "check requirements")()

	terminal := ansi.Terminal{Writer: internal.Stderr(ctx)}

	result := Result{Diagnostics: append([]error(nil), params.Declarations.Diagnostics...)}

	for _, err := range params.Declarations.Diagnostics {
		terminal.Printf("%s\n", yellow.Sprint("skipping declaration: "+err.Error()))
	}

	for _, req := range params.Declarations.Requirements {
		if err := ctx.Err(); err != nil {
			return &result, err
		}

		rows, diagnostics := checkRequirement(ctx, terminal, req, params)

		result.Rows = append(result.Rows, rows...)
		result.Outcomes = append(result.Outcomes, Outcome{Requirement: req, Rows: rows})
		result.Diagnostics = append(result.Diagnostics, diagnostics...)

		terminal.Printf("%s\n", separator)
	}

	return &result, nil
}

func checkRequirement(ctx context.Context, terminal ansi.Terminal, req requirements.Requirement, params Params) (rows []reconcile.Row, diagnostics []error) {
	defer func() {
		if e := recover(); e != nil {
			internal.Debug(ctx).Printf("%s\n", xruntime.CallStack(-1).String())
			err := fmt.Errorf("%s: unexpected failure: %v", req.Tool, e)
			terminal.Printf("%s\n", red.Sprint(err.Error()))
			diagnostics = append(diagnostics, err)
			rows = reconcile.Reconcile(req, probe.Result{Found: true, Location: reconcile.Unparsable}, nil, err)
		}
	}()

	terminal.Printf("Checking %s exists on your device...\n", req.Tool)

	result := params.Prober.Probe(ctx, req)
	if !result.Found {
		terminal.Printf("%s\n", red.Sprint(fmt.Sprintf("it seems you do not have %s installed on your device", req.Tool)))
		internal.Debug(ctx).Printf("%v\n", result.Err)
		return reconcile.Reconcile(req, result, nil, nil, reconcile.WithMode(params.Mode)), []error{fmt.Errorf("%s: %w", req.Tool, cmp.Or(result.Err, probe.ErrToolNotFound))}
	}

	terminal.Printf("%s exists on this device\n", req.Tool)
	terminal.Printf("Checking %s version...\n", req.Tool)

	if result.Err != nil {
		diagnostics = append(diagnostics, fmt.Errorf("%s: %w", req.Tool, result.Err))
		terminal.Printf("%s\n", yellow.Sprint(result.Err.Error()))
	}

	versions, err := extract.For(req.Kind).Extract(result.Output)
	if err != nil {
		diagnostics = append(diagnostics, fmt.Errorf("%s: %w", req.Tool, err))
		terminal.Printf("%s\n", yellow.Sprint(fmt.Sprintf("could not determine %s version: %v", req.Tool, err)))
	}

	if req.Kind == requirements.Composite && params.Server != nil && !hasSegment(versions, extract.ServerSegment) && len(req.FacetsOf(requirements.Server)) > 0 {
		server, err := params.Server.ServerVersions(ctx)
		if err != nil {
			internal.Debug(ctx).Printf("server version discovery: %v\n", err)
		}
		versions = append(versions, server...)
	}

	rows = reconcile.Reconcile(req, result, versions, err, reconcile.WithMode(params.Mode))

	for _, row := range rows {
		report(terminal, row)
	}

	return rows, diagnostics
}

func report(terminal ansi.Terminal, row reconcile.Row) {
	switch {
	case row.Matched:
		terminal.Printf("%s\n", green.Sprint(fmt.Sprintf("You have the correct version (%s) installed", row.Required)))
	case row.Observed == reconcile.NotConfigured || row.Observed == reconcile.Unparsable:
		terminal.Printf("%s\n", yellow.Sprint(row.Note))
	default:
		message := []string{
			"Incorrect version installed:",
			"Your version: " + row.Observed,
			"Required version: " + row.Required,
		}
		if row.Drift != reconcile.DriftNone {
			message = append(message, fmt.Sprintf("Your version is %s than required", row.Drift))
		}
		terminal.Printf("%s\n", red.Sprint(fmt.Sprintf("%s: %s", row.Label, strings.Join(message, "\n"))))
	}
}

func hasSegment(versions []extract.Version, segment extract.Segment) bool {
	for _, version := range versions {
		if version.Segment == segment {
			return true
		}
	}
	return false
}

// IsCanceled reports whether err stems from the run being interrupted.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
