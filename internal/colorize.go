package internal

import (
	"regexp"

	"github.com/davidmdm/ansi"
)

var (
	cyan     = ansi.MakeStyle(ansi.FgCyan)
	backtick = regexp.MustCompile("`([^`]+)`")
)

// Colorize renders `quoted` words of help text in cyan.
func Colorize(value string) string {
	return backtick.ReplaceAllStringFunc(value, func(match string) string {
		return cyan.Sprint(match[1 : len(match)-1])
	})
}
