package main

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/yokecd/toolcheck/internal"
)

// versionedModules are the dependencies whose versions affect what toolcheck can observe.
var versionedModules = []string{
	"github.com/go-git/go-git/v5",
	"k8s.io/cli-runtime",
	"k8s.io/client-go",
}

func Version(ctx context.Context) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleRounded)

	tbl.AppendRow(table.Row{"toolcheck", internal.Version()})
	tbl.AppendRow(table.Row{"go", runtime.Version()})
	tbl.AppendSeparator()

	for _, mod := range internal.Mods() {
		if slices.Contains(versionedModules, mod.Path) {
			tbl.AppendRow(table.Row{mod.Path, mod.Version})
		}
	}

	_, err := fmt.Fprintln(internal.Stdout(ctx), tbl.Render())
	return err
}
