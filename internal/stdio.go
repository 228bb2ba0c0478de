package internal

import (
	"context"
	"io"
	"os"
)

type stdioKey struct{}

type stdio struct {
	Out io.Writer
	Err io.Writer
}

// WithStdio overrides the output streams used by commands. Nil values fall back to the os streams.
func WithStdio(ctx context.Context, out, err io.Writer) context.Context {
	return context.WithValue(ctx, stdioKey{}, stdio{Out: out, Err: err})
}

func Stdout(ctx context.Context) io.Writer {
	if value, _ := ctx.Value(stdioKey{}).(stdio); value.Out != nil {
		return value.Out
	}
	return os.Stdout
}

func Stderr(ctx context.Context) io.Writer {
	if value, _ := ctx.Value(stdioKey{}).(stdio); value.Err != nil {
		return value.Err
	}
	return os.Stderr
}

type warning struct{ error }

func (w warning) Unwrap() error { return w.error }

// Warning marks err as a soft failure: it is reported to the user but does not change the exit status.
func Warning(err error) error {
	if err == nil {
		return nil
	}
	return warning{err}
}

func IsWarning(err error) bool {
	_, ok := err.(warning)
	return ok
}
