package x

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/davidmdm/ansi"

	"github.com/yokecd/toolcheck/internal"
)

var cyan = ansi.MakeStyle(ansi.FgCyan)

// WaitDelay bounds how long Output waits for the output pipes to close once the command has been canceled.
var WaitDelay = 250 * time.Millisecond

type xoptions struct {
	Env []string
}

// Env appends variables to the environment inherited from the current process.
func Env(e ...string) XOpt {
	return func(opts *xoptions) {
		opts.Env = append(opts.Env, e...)
	}
}

type XOpt func(*xoptions)

// Output runs the command and returns its combined stdout and stderr.
// The output is returned even when the command exits with a non-zero status.
// Canceling ctx kills the command's whole process group, so wrapper scripts cannot outlive it.
func Output(ctx context.Context, name string, args []string, opts ...XOpt) ([]byte, error) {
	var options xoptions
	for _, apply := range opts {
		apply(&options)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), options.Env...)
	cmd.WaitDelay = WaitDelay

	killProcessGroupOnCancel(cmd)

	internal.Debug(ctx).Printf("%s\n", cyan.Sprint(strings.Join(append([]string{"$", name}, args...), " ")))

	return cmd.CombinedOutput()
}
