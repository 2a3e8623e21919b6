package manifest

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/pipes"
)

const yamlManifest = `
umask_policy: process
pipes:
  - path: /storage/DCIM/foo.jpg
    mode: "rw-rw-rw-"
  - path: /run/app/control
pools:
  - dir: /data/data/app
    prefix: pipe
    count: 3
    mode: "0600"
`

const tomlManifest = `
umask_policy = "exact"

[[pipes]]
path = "/run/app/control"
mode = "0640"

[[pools]]
dir = "/data/data/app"
prefix = "pipe"
count = 2
`

const jsonManifest = `{
  "pipes": [{"path": "/run/app/control", "mode": "rw-------"}],
  "pools": [{"dir": "/data/data/app", "prefix": "pipe", "count": 1, "mode": "0o666"}]
}`

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
}

func TestLoadYAML(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/etc/pipeprov/pipes.yaml", yamlManifest)

	m, err := Load(fsys, "/etc/pipeprov/pipes.yaml")
	require.NoError(t, err)

	policy, err := m.Policy()
	require.NoError(t, err)
	assert.Equal(t, pipes.UmaskProcess, policy)

	reqs, err := m.Requests()
	require.NoError(t, err)
	assert.Equal(t, []pipes.Request{
		{Path: "/storage/DCIM/foo.jpg", Mode: 0o666},
		{Path: "/run/app/control", Mode: pipes.DefaultMode},
		{Path: "/data/data/app/pipe0", Mode: 0o600},
		{Path: "/data/data/app/pipe1", Mode: 0o600},
		{Path: "/data/data/app/pipe2", Mode: 0o600},
	}, reqs)
}

func TestLoadTOML(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/etc/pipeprov/pipes.toml", tomlManifest)

	m, err := Load(fsys, "/etc/pipeprov/pipes.toml")
	require.NoError(t, err)

	reqs, err := m.Requests()
	require.NoError(t, err)
	assert.Equal(t, []pipes.Request{
		{Path: "/run/app/control", Mode: 0o640},
		{Path: "/data/data/app/pipe0", Mode: pipes.DefaultMode},
		{Path: "/data/data/app/pipe1", Mode: pipes.DefaultMode},
	}, reqs)
}

func TestLoadJSON(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/etc/pipeprov/pipes.json", jsonManifest)

	m, err := Load(fsys, "/etc/pipeprov/pipes.json")
	require.NoError(t, err)

	policy, err := m.Policy()
	require.NoError(t, err)
	assert.Empty(t, policy)

	reqs, err := m.Requests()
	require.NoError(t, err)
	assert.Equal(t, []pipes.Request{
		{Path: "/run/app/control", Mode: 0o600},
		{Path: "/data/data/app/pipe0", Mode: 0o666},
	}, reqs)
}

func TestLoadErrors(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/m/pipes.ini", "pipes=1")
	writeFile(t, fsys, "/m/bad.yaml", "pipes: [")
	writeFile(t, fsys, "/m/typo.yaml", "pipe:\n  - path: /run/x\n")
	writeFile(t, fsys, "/m/typo.json", `{"pipez": []}`)
	writeFile(t, fsys, "/m/typo.toml", "[[pipez]]\npath = \"/run/x\"\n")

	_, err := Load(fsys, "/m/pipes.ini")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(fsys, "/m/missing.yaml")
	assert.ErrorContains(t, err, "read manifest")

	for _, path := range []string{"/m/bad.yaml", "/m/typo.yaml", "/m/typo.json", "/m/typo.toml"} {
		_, err = Load(fsys, path)
		assert.Error(t, err, path)
	}
}

func TestRequestsErrors(t *testing.T) {
	tests := []struct {
		name string
		m    Manifest
	}{
		{"bad pipe mode", Manifest{Pipes: []Pipe{{Path: "/run/a", Mode: "rwz"}}}},
		{"bad pool mode", Manifest{Pools: []Pool{{Dir: "/run", Prefix: "p", Count: 1, Mode: "9"}}}},
		{"pool without prefix", Manifest{Pools: []Pool{{Dir: "/run", Count: 1}}}},
		{"pool relative dir", Manifest{Pools: []Pool{{Dir: "run", Prefix: "p", Count: 1}}}},
		{"pool zero count", Manifest{Pools: []Pool{{Dir: "/run", Prefix: "p"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.m.Requests()
			assert.Error(t, err)
		})
	}
}

func TestRequestsKeepInvalidPaths(t *testing.T) {
	// path problems are reported per request by the provisioner
	m := Manifest{Pipes: []Pipe{{Path: "relative"}, {Path: "", Mode: "0600"}}}

	reqs, err := m.Requests()
	require.NoError(t, err)
	assert.Len(t, reqs, 2)
}

func TestSetuidModeReachesProvisioner(t *testing.T) {
	m := Manifest{Pipes: []Pipe{{Path: "/run/a", Mode: "4666"}}}

	reqs, err := m.Requests()
	require.NoError(t, err)
	assert.False(t, reqs[0].Mode.Valid())
}

func TestPolicyInvalid(t *testing.T) {
	m := Manifest{UmaskPolicy: "loose"}
	_, err := m.Policy()
	assert.Error(t, err)
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"pipes.yaml": FormatYAML,
		"pipes.YML":  FormatYAML,
		"pipes.toml": FormatTOML,
		"pipes.json": FormatJSON,
	}
	for path, want := range tests {
		got, err := FormatFor(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got)
	}

	_, err := FormatFor("pipes")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseSpecs(t *testing.T) {
	reqs, err := ParseSpecs([]string{
		"/run/app/pipe0:0600",
		"/run/app/pipe1:rw-r-----",
		"/run/app/pipe2",
		" ",
		"/run/app/a:b",
		"/run/app/c:0o640",
	})
	require.NoError(t, err)

	assert.Equal(t, []pipes.Request{
		{Path: "/run/app/pipe0", Mode: 0o600},
		{Path: "/run/app/pipe1", Mode: 0o640},
		{Path: "/run/app/pipe2", Mode: pipes.DefaultMode},
		{Path: "/run/app/a:b", Mode: pipes.DefaultMode},
		{Path: "/run/app/c", Mode: 0o640},
	}, reqs)
}

func TestParseSpecsMistypedMode(t *testing.T) {
	for _, spec := range []string{
		"/run/app/pipe0:rw-rw-rw",
		"/run/app/pipe0:0888",
		"/run/app/pipe0:77777",
		"/run/app/pipe0:rwxrwxrwxr",
		"/run/app/pipe0:0o",
	} {
		t.Run(spec, func(t *testing.T) {
			reqs, err := ParseSpecs([]string{"/run/app/ok", spec})
			assert.ErrorIs(t, err, ErrInvalidSpec)
			assert.ErrorIs(t, err, pipes.ErrInvalidMode)
			assert.Nil(t, reqs)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	reqs := []pipes.Request{
		{Path: "/run/app/pipe0", Mode: 0o600},
		{Path: "/run/app/pipe1", Mode: 0o666},
	}

	for _, format := range []Format{FormatYAML, FormatTOML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			data, err := FromRequests(reqs).Encode(format)
			require.NoError(t, err)

			m, err := Parse(data, format)
			require.NoError(t, err)
			got, err := m.Requests()
			require.NoError(t, err)
			assert.Equal(t, reqs, got)
		})
	}

	_, err := FromRequests(reqs).Encode("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
