package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/yokecd/toolcheck/internal"
)

type DiffParams struct {
	RunParams
	Context int
}

//go:embed cmd_diff_help.txt
var diffHelp string

func init() {
	diffHelp = strings.TrimSpace(internal.Colorize(diffHelp))
}

func GetDiffParams(settings GlobalSettings, args []string) (*DiffParams, error) {
	flagset := flag.NewFlagSet("diff", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), diffHelp)
		flagset.PrintDefaults()
	}

	params := DiffParams{RunParams: RunParams{GlobalSettings: settings}}

	registerRunFlags(flagset, &params.RunParams)
	flagset.IntVar(&params.Context, "context", 3, "number of lines of context in diff")

	flagset.Parse(args)

	if params.Context < 0 {
		return nil, fmt.Errorf("context must not be negative")
	}

	if params.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive")
	}

	return &params, nil
}

func Diff(ctx context.Context, params DiffParams) error {
	file, result, err := execute(ctx, params.RunParams)
	if err != nil {
		return err
	}

	diff, err := result.Diff(filepath.Base(file.Path), file.Content, params.Context)
	if err != nil {
		return err
	}

	_, err = io.WriteString(internal.Stdout(ctx), diff)
	return err
}
