package config

import (
	"os"
	"strings"
	"time"

	"github.com/davidmdm/conf"

	"github.com/yokecd/toolcheck/internal/probe"
	"github.com/yokecd/toolcheck/internal/requirements"
)

const DefaultRequirementsFile = "project-requirements.txt"

// Config holds the environment defaults of toolcheck. Command line flags take precedence over them.
type Config struct {
	Requirements   string
	Timeout        time.Duration
	CompositeTools []string
	Output         string
	Legacy         bool
	KubeDiscovery  bool
}

type LookupFunc = func(string) (string, bool)

// Load reads the configuration from lookup, typically os.LookupEnv.
func Load(lookup LookupFunc) (*Config, error) {
	var (
		cfg       Config
		composite string
	)

	parser := conf.MakeParser(lookup)

	conf.Var(parser, &cfg.Requirements, "TOOLCHECK_REQUIREMENTS")
	conf.Var(parser, &cfg.Timeout, "TOOLCHECK_TIMEOUT", conf.Default(probe.DefaultTimeout))
	conf.Var(parser, &composite, "TOOLCHECK_COMPOSITE_TOOLS", conf.Default(strings.Join(requirements.DefaultCompositeTools, ",")))
	conf.Var(parser, &cfg.Output, "TOOLCHECK_OUTPUT", conf.Default("table"))
	conf.Var(parser, &cfg.Legacy, "TOOLCHECK_LEGACY")
	conf.Var(parser, &cfg.KubeDiscovery, "TOOLCHECK_KUBE_DISCOVERY")

	if err := parser.Parse(); err != nil {
		return nil, err
	}

	for tool := range strings.SplitSeq(composite, ",") {
		if tool = strings.TrimSpace(tool); tool != "" {
			cfg.CompositeTools = append(cfg.CompositeTools, strings.ToUpper(tool))
		}
	}

	return &cfg, nil
}

func LoadFromEnv() (*Config, error) {
	return Load(os.LookupEnv)
}
