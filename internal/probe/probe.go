package probe

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/yokecd/toolcheck/internal"
	"github.com/yokecd/toolcheck/internal/requirements"
	"github.com/yokecd/toolcheck/internal/x"
)

const NotInstalled = "not installed"

const DefaultTimeout = 5 * time.Second

var (
	ErrToolNotFound         = errors.New("tool not found")
	ErrVersionCommandFailed = errors.New("version command failed")
)

// Result is the outcome of locating and querying a single tool.
// When Found is true and Err wraps ErrVersionCommandFailed, Output holds whatever the failed commands printed.
type Result struct {
	Found    bool
	Location string
	Output   string
	Err      error
}

func NotFound(err error) Result {
	return Result{Location: NotInstalled, Err: err}
}

type Prober interface {
	Probe(ctx context.Context, req requirements.Requirement) Result
}

// DefaultCommands are the argument forms tried in order to make a tool report its version.
var DefaultCommands = [][]string{{"version"}, {"--version"}}

type (
	LookPathFunc func(file string) (string, error)
	RunFunc      func(ctx context.Context, name string, args []string) ([]byte, error)
)

// Exec probes tools installed on the local machine.
type Exec struct {
	// Timeout bounds every single command invocation. Defaults to DefaultTimeout.
	Timeout  time.Duration
	Commands [][]string
	LookPath LookPathFunc
	Run      RunFunc
}

var _ Prober = Exec{}

func (probe Exec) Probe(ctx context.Context, req requirements.Requirement) Result {
	defer internal.DebugTimer(ctx, "probe "+req.Tool)()

	lookPath := probe.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	path, err := lookPath(req.Executable())
	if err != nil {
		return NotFound(fmt.Errorf("%w: %s: %w", ErrToolNotFound, req.Executable(), err))
	}

	commands := probe.Commands
	if len(commands) == 0 {
		commands = DefaultCommands
	}

	var (
		outputs []string
		errs    []error
	)

	for _, args := range commands {
		output, err := probe.run(ctx, path, args)
		if err == nil {
			return Result{Found: true, Location: path, Output: output}
		}

		if ctx.Err() != nil {
			return NotFound(fmt.Errorf("%w: %s: %w", ErrToolNotFound, req.Executable(), ctx.Err()))
		}

		if errors.Is(err, context.DeadlineExceeded) {
			return NotFound(fmt.Errorf("%w: %s did not respond within %s", ErrToolNotFound, req.Executable(), probe.timeout()))
		}

		outputs = append(outputs, output)
		errs = append(errs, fmt.Errorf("%s %s: %w", req.Executable(), strings.Join(args, " "), err))
	}

	return Result{
		Found:    true,
		Location: path,
		Output:   firstNonEmpty(outputs),
		Err:      fmt.Errorf("%w: %w", ErrVersionCommandFailed, errors.Join(errs...)),
	}
}

func (probe Exec) timeout() time.Duration {
	return cmp.Or(probe.Timeout, DefaultTimeout)
}

func (probe Exec) run(ctx context.Context, path string, args []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, probe.timeout())
	defer cancel()

	run := probe.Run
	if run == nil {
		run = func(ctx context.Context, name string, args []string) ([]byte, error) {
			return x.Output(ctx, name, args, x.Env("LC_ALL=C"))
		}
	}

	output, err := run(ctx, path, args)
	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("%w: %w", ctx.Err(), err)
	}

	return string(output), err
}

func firstNonEmpty(values []string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
