package probe

import (
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/version"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/client-go/discovery"

	"github.com/yokecd/toolcheck/internal"
	"github.com/yokecd/toolcheck/internal/extract"
)

// KubeServer asks the api-server referenced by the kubeconfig for its version.
// It is used when kubectl itself could not report a server version, for instance with newer clients
// whose default output no longer contains the version.Info structure.
type KubeServer struct {
	Flags   *genericclioptions.ConfigFlags
	Timeout time.Duration
}

func (kube KubeServer) ServerVersions(ctx context.Context) ([]extract.Version, error) {
	defer internal.DebugTimer(ctx, "discover kubernetes server version")()

	if kube.Flags == nil {
		return nil, fmt.Errorf("no kubernetes config flags")
	}

	cfg, err := kube.Flags.ToRESTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	if kube.Timeout > 0 {
		cfg.Timeout = kube.Timeout
	}

	client, err := discovery.NewDiscoveryClientForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}

	info, err := client.ServerVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to get server version: %w", err)
	}

	return ServerVersionsFromInfo(info), nil
}

// ServerVersionsFromInfo converts a version.Info into server segment versions keyed the same way as kubectl's output.
func ServerVersionsFromInfo(info *version.Info) []extract.Version {
	if info == nil {
		return nil
	}

	var versions []extract.Version
	for _, field := range []struct {
		Key   string
		Value string
	}{
		{Key: "Git", Value: info.GitVersion},
		{Key: "Go", Value: info.GoVersion},
	} {
		if field.Value == "" {
			continue
		}
		versions = append(versions, extract.Version{
			Key:     field.Key,
			Value:   extract.NormalizeValue(field.Value),
			Segment: extract.ServerSegment,
		})
	}

	return versions
}
