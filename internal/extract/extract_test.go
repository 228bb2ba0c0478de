package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yokecd/toolcheck/internal/requirements"
)

const kubectlSample = `ClientVersion: GitVersion:"v1.17.1" GoVersion:"go1.13.6" Server ServerVersion: GitVersion:"v1.13.12-gke.25" GoVersion:"go1.12.11b4"`

const kubectlLegacyOutput = `Client Version: version.Info{Major:"1", Minor:"17", GitVersion:"v1.17.1", GitCommit:"d224476cd0730baca2b6e357d144171ed74192d6", GitTreeState:"clean", BuildDate:"2020-01-14T21:04:32Z", GoVersion:"go1.13.6", Compiler:"gc", Platform:"darwin/amd64"}
Server Version: version.Info{Major:"1", Minor:"13+", GitVersion:"v1.13.12-gke.25", GitCommit:"654de8cac69f1fc5db6f2de0b88d6d027bc15828", GitTreeState:"clean", BuildDate:"2020-01-14T06:01:20Z", GoVersion:"go1.12.11b4", Compiler:"gc", Platform:"linux/amd64"}
`

func TestGeneric(t *testing.T) {
	cases := []struct {
		Name     string
		Input    string
		Expected string
		Error    error
	}{
		{
			Name:     "packer",
			Input:    "Packer v1.5.4\n",
			Expected: "1.5.4",
		},
		{
			Name:     "docker",
			Input:    "Docker version 20.10.7, build f0df350",
			Expected: "20.10.7",
		},
		{
			Name:     "git",
			Input:    "git version 2.39.2 (Apple Git-143)",
			Expected: "2.39.2",
		},
		{
			Name:     "two component version",
			Input:    "terraform 0.12",
			Expected: "0.12",
		},
		{
			Name:     "first match wins",
			Input:    "tool 1.2.3 built with go1.21.0",
			Expected: "1.2.3",
		},
		{
			Name:  "no dotted version",
			Input: "usage: tool [flags]",
			Error: ErrVersionNotFound,
		},
		{
			Name:  "empty output",
			Input: "",
			Error: ErrVersionNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			versions, err := Generic{}.Extract(tc.Input)
			if tc.Error != nil {
				require.ErrorIs(t, err, tc.Error)
				return
			}
			require.NoError(t, err)
			require.Equal(t, []Version{{Value: tc.Expected, Segment: ClientSegment}}, versions)
		})
	}
}

func TestStructured(t *testing.T) {
	expected := []Version{
		{Key: "Git", Value: "1.17.1", Segment: ClientSegment},
		{Key: "Go", Value: "1.13.6", Segment: ClientSegment},
		{Key: "Git", Value: "1.13.12-gke.25", Segment: ServerSegment},
		{Key: "Go", Value: "1.12.11b4", Segment: ServerSegment},
	}

	for _, tc := range []struct {
		Name  string
		Input string
	}{
		{Name: "compact", Input: kubectlSample},
		{Name: "legacy kubectl output", Input: kubectlLegacyOutput},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			versions, err := Structured{}.Extract(tc.Input)
			require.NoError(t, err)
			require.Equal(t, expected, versions)
		})
	}
}

func TestStructuredWithoutServer(t *testing.T) {
	output := `Client Version: version.Info{GitVersion:"v1.17.1", GoVersion:"go1.13.6"}
The connection to the server localhost:8080 was refused - did you specify the right host or port?`

	client, server, ok := Segments(output)
	require.False(t, ok, "the server marker is case sensitive")
	require.Empty(t, server)
	require.Len(t, ScanFields(client, ClientSegment), 2)

	client, server, ok = Segments(`Client Version: version.Info{GitVersion:"v1.17.1", GoVersion:"go1.13.6"}
Server Version: v1.30.2`)
	require.True(t, ok)
	require.Empty(t, ScanFields(server, ServerSegment))
	require.Len(t, ScanFields(client, ClientSegment), 2)

	client, server, ok = Segments(`GitVersion:"v1.17.1"`)
	require.False(t, ok)
	require.Empty(t, server)
	require.Equal(t, `GitVersion:"v1.17.1"`, client)

	versions, err := Structured{}.Extract("no versions here")
	require.NoError(t, err)
	require.Empty(t, versions)
}

func TestStructuredIsIdempotent(t *testing.T) {
	first, err := Structured{}.Extract(kubectlLegacyOutput)
	require.NoError(t, err)

	second, err := Structured{}.Extract(kubectlLegacyOutput)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestNormalizeValue(t *testing.T) {
	for input, expected := range map[string]string{
		`"v1.17.1"`:       "1.17.1",
		`"go1.12.11b4"`:   "1.12.11b4",
		"1.13.12-gke.25":  "1.13.12-gke.25",
		`" devel1.2 "`:    "1.2",
		`"V1.0.0"`:        "V1.0.0",
		`"release-1.2.3"`: "-1.2.3",
	} {
		require.Equal(t, expected, NormalizeValue(input), input)
	}
}

func TestFor(t *testing.T) {
	require.IsType(t, Generic{}, For(requirements.Simple))
	require.IsType(t, Structured{}, For(requirements.Composite))
}

func TestLookup(t *testing.T) {
	versions, err := Structured{}.Extract(kubectlSample)
	require.NoError(t, err)

	version, err := Lookup(versions, ServerSegment, "Go")
	require.NoError(t, err)
	require.Equal(t, "1.12.11b4", version.Value)

	_, err = Lookup(versions, ServerSegment, "Kustomize")
	require.ErrorIs(t, err, ErrFieldNotFound)
}
