package check

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yokecd/toolcheck/internal"
	"github.com/yokecd/toolcheck/internal/probe"
)

func TestSnapshotAndDiff(t *testing.T) {
	declared := `# toolchain
PACKER=1.5.4
KUBECTL=CLIENT_GIT:1.17.1, SERVER_GIT:1.13.12-gke.25
HELM=3.2.0
`

	ctx := internal.WithStdio(context.Background(), nil, new(bytes.Buffer))

	result, err := Run(ctx, Params{
		Declarations: parse(t, declared),
		Prober: fakeProber{
			"PACKER":  {Found: true, Location: "/usr/bin/packer", Output: "Packer v1.6.0"},
			"KUBECTL": {Found: true, Location: "/usr/bin/kubectl", Output: `Client Version: version.Info{GitVersion:"v1.18.0"}`},
		},
	})
	require.NoError(t, err)

	require.Equal(
		t,
		`# toolchain
PACKER=1.6.0
KUBECTL=CLIENT_GIT:1.18.0, SERVER_GIT:1.13.12-gke.25
HELM=3.2.0
`,
		result.Snapshot(declared),
	)

	diff, err := result.Diff("project-requirements.txt", declared, 1)
	require.NoError(t, err)
	require.Contains(t, diff, "--- project-requirements.txt")
	require.Contains(t, diff, "+++ project-requirements.txt (observed)")
	require.Contains(t, diff, "-PACKER=1.5.4")
	require.Contains(t, diff, "+PACKER=1.6.0")
	require.Contains(t, diff, "-KUBECTL=CLIENT_GIT:1.17.1, SERVER_GIT:1.13.12-gke.25")
	require.Contains(t, diff, "+KUBECTL=CLIENT_GIT:1.18.0, SERVER_GIT:1.13.12-gke.25")
	require.NotContains(t, diff, "-HELM")
}

func TestDiffWhenSatisfied(t *testing.T) {
	declared := "PACKER=1.5.4\n"

	ctx := internal.WithStdio(context.Background(), nil, new(bytes.Buffer))

	result, err := Run(ctx, Params{
		Declarations: parse(t, declared),
		Prober:       fakeProber{"PACKER": probe.Result{Found: true, Location: "/usr/bin/packer", Output: "1.5.4"}},
	})
	require.NoError(t, err)

	diff, err := result.Diff("project-requirements.txt", declared, 3)
	require.NoError(t, err)
	require.Empty(t, diff)
}
