package main

import (
	"cmp"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/davidmdm/x/xcontext"

	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/yokecd/toolcheck/internal"
	"github.com/yokecd/toolcheck/internal/check"
	"github.com/yokecd/toolcheck/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		if internal.IsWarning(err) || check.IsCanceled(err) {
			return
		}
		os.Exit(1)
	}
}

//go:embed cmd_help.txt
var rootHelp string

func init() {
	rootHelp = strings.TrimSpace(internal.Colorize(rootHelp))
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	settings := GlobalSettings{
		Debug:  new(bool),
		Kube:   genericclioptions.NewConfigFlags(false),
		Config: cfg,
	}

	RegisterGlobalFlags(flag.CommandLine, &settings)

	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), rootHelp)
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr)
	}

	flag.Parse()

	ctx, cancel := xcontext.WithSignalCancelation(context.Background(), syscall.SIGINT)
	defer cancel()

	ctx = internal.WithDebugFlag(ctx, settings.Debug)

	cmd, subcmdArgs := "check", flag.Args()
	if len(subcmdArgs) > 0 && !strings.HasPrefix(subcmdArgs[0], "-") {
		cmd, subcmdArgs = subcmdArgs[0], subcmdArgs[1:]
	}

	switch cmd {
	case "check", "verify":
		{
			params, err := GetCheckParams(settings, subcmdArgs)
			if err != nil {
				return err
			}
			return Check(ctx, *params)
		}
	case "diff", "drift":
		{
			params, err := GetDiffParams(settings, subcmdArgs)
			if err != nil {
				return err
			}
			return Diff(ctx, *params)
		}
	case "version":
		{
			return Version(ctx)
		}
	default:
		flag.Usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

type GlobalSettings struct {
	Kube   *genericclioptions.ConfigFlags
	Debug  *bool
	Config *config.Config
}

func RegisterGlobalFlags(flagset *flag.FlagSet, settings *GlobalSettings) {
	flagset.StringVar(settings.Kube.KubeConfig, "kubeconfig", cmp.Or(os.Getenv("KUBECONFIG"), clientcmd.RecommendedHomeFile), "path to kube config")
	flagset.StringVar(settings.Kube.Context, "kube-context", "", "kubernetes context to use")
	flagset.BoolVar(settings.Debug, "debug", false, "debug output mode")
}
