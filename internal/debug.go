package internal

import (
	"context"
	"io"
	"runtime/debug"
	"time"

	"github.com/davidmdm/ansi"
	"github.com/docker/go-units"
)

type debugKey struct{}

func WithDebugFlag(ctx context.Context, debug *bool) context.Context {
	return context.WithValue(ctx, debugKey{}, debug)
}

func Debug(ctx context.Context) ansi.Terminal {
	debug, _ := ctx.Value(debugKey{}).(*bool)
	if debug == nil || !*debug {
		return ansi.Terminal{Writer: io.Discard}
	}
	return ansi.Terminal{Writer: Stderr(ctx)}
}

func DebugTimer(ctx context.Context, msg string) func() {
	start := time.Now()
	terminal := Debug(ctx)
	terminal.Printf("start: %s\n", msg)
	return func() {
		terminal.Printf("done:  %s: %s (%s)\n", msg, time.Since(start).Round(time.Millisecond), units.HumanDuration(time.Since(start)))
	}
}

var info, _ = debug.ReadBuildInfo()

func Version() string {
	if info == nil {
		return "(devel)"
	}
	return info.Main.Version
}

func Mods() []*debug.Module {
	if info == nil {
		return nil
	}
	return info.Deps
}
