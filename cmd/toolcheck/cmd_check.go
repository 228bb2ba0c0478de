package main

import (
	"bytes"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/yokecd/toolcheck/internal"
	"github.com/yokecd/toolcheck/internal/check"
	"github.com/yokecd/toolcheck/internal/config"
	"github.com/yokecd/toolcheck/internal/probe"
	"github.com/yokecd/toolcheck/internal/project"
	"github.com/yokecd/toolcheck/internal/reconcile"
	"github.com/yokecd/toolcheck/internal/report"
	"github.com/yokecd/toolcheck/internal/requirements"
)

// RunParams are shared by every command that probes the machine.
type RunParams struct {
	GlobalSettings
	File          string
	Timeout       time.Duration
	Legacy        bool
	KubeDiscovery bool

	// Prober overrides the prober used against the local machine.
	Prober probe.Prober
}

type CheckParams struct {
	RunParams
	Output         report.Format
	Color          bool
	FailOnMismatch bool
}

//go:embed cmd_check_help.txt
var checkHelp string

func init() {
	checkHelp = strings.TrimSpace(internal.Colorize(checkHelp))
}

func registerRunFlags(flagset *flag.FlagSet, params *RunParams) {
	RegisterGlobalFlags(flagset, &params.GlobalSettings)
	flagset.StringVar(&params.File, "f", params.Config.Requirements, "path to the requirements file (defaults to "+config.DefaultRequirementsFile+" in the current directory or at the git repository root)")
	flagset.DurationVar(&params.Timeout, "timeout", params.Config.Timeout, "maximum time a single version command may take")
	flagset.BoolVar(&params.Legacy, "legacy", params.Config.Legacy, "reproduce the legacy kubectl reconciliation where configured server fields always match")
	flagset.BoolVar(&params.KubeDiscovery, "kube-discovery", params.Config.KubeDiscovery, "ask the kubernetes api-server for its version when kubectl does not report it")
}

func GetCheckParams(settings GlobalSettings, args []string) (*CheckParams, error) {
	flagset := flag.NewFlagSet("check", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), checkHelp)
		flagset.PrintDefaults()
	}

	params := CheckParams{RunParams: RunParams{GlobalSettings: settings}}

	registerRunFlags(flagset, &params.RunParams)

	var output string
	flagset.StringVar(&output, "o", settings.Config.Output, "output format: table, json or yaml")
	flagset.BoolVar(&params.Color, "color", term.IsTerminal(int(os.Stdout.Fd())), "colorize the report")
	flagset.BoolVar(&params.FailOnMismatch, "fail-on-mismatch", false, "exit with a non-zero status when a requirement is not satisfied")

	flagset.Parse(args)

	format, err := report.ParseFormat(output)
	if err != nil {
		return nil, err
	}
	params.Output = format

	if params.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive")
	}

	return &params, nil
}

func Check(ctx context.Context, params CheckParams) error {
	renderer, err := report.For(params.Output, params.Color)
	if err != nil {
		return err
	}

	_, result, err := execute(ctx, params.RunParams)
	if err != nil {
		return err
	}

	if err := renderer.Render(internal.Stdout(ctx), result.Rows); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if mismatches := result.Mismatches(); len(mismatches) > 0 {
		err := fmt.Errorf("%d of %d requirements not satisfied", len(mismatches), len(result.Rows))
		if params.FailOnMismatch {
			return err
		}
		return internal.Warning(err)
	}

	return nil
}

// execute reads the requirements file and checks every declaration against the machine.
// It returns the raw content of the requirements file alongside the result.
func execute(ctx context.Context, params RunParams) (*requirementsFile, *check.Result, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	path, err := project.Locate(cwd, params.File, config.DefaultRequirementsFile)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read requirements file: %w", err)
	}

	internal.Debug(ctx).Printf("using requirements file: %s\n", path)

	decls, err := requirements.Parse(bytes.NewReader(data), requirements.WithCompositeTools(params.Config.CompositeTools...))
	if err != nil {
		return nil, nil, err
	}

	prober := params.Prober
	if prober == nil {
		prober = probe.Exec{Timeout: params.Timeout}
	}

	runParams := check.Params{
		Declarations: decls,
		Prober:       prober,
		Mode:         reconcile.Strict,
	}

	if params.Legacy {
		runParams.Mode = reconcile.Legacy
	}

	if params.KubeDiscovery {
		runParams.Server = probe.KubeServer{Flags: params.Kube, Timeout: params.Timeout}
	}

	result, err := check.Run(ctx, runParams)
	if err != nil {
		return nil, nil, err
	}

	if err := result.Err(); err != nil {
		internal.Debug(ctx).Printf("%v\n", err)
	}

	return &requirementsFile{Path: path, Content: string(data)}, result, nil
}

type requirementsFile struct {
	Path    string
	Content string
}
