package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/pipes"
	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/shared/paths"
)

// Format identifies a manifest encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for files whose extension names no format.
var ErrUnknownFormat = errors.New("unknown manifest format")

// ErrInvalidSpec is returned for a "path:mode" entry whose mode is malformed.
var ErrInvalidSpec = errors.New("invalid pipe spec")

// modeChars are the characters a mode is written with, plus the digits an
// octal typo is likely to contain.
const modeChars = "0123456789oOrwx-"

var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

// Manifest lists the pipes to provision.
type Manifest struct {
	UmaskPolicy string `json:"umask_policy,omitempty" yaml:"umask_policy,omitempty" toml:"umask_policy,omitempty"`
	Pipes       []Pipe `json:"pipes,omitempty" yaml:"pipes,omitempty" toml:"pipes,omitempty"`
	Pools       []Pool `json:"pools,omitempty" yaml:"pools,omitempty" toml:"pools,omitempty"`
}

// Pipe is a single named pipe. An empty mode means pipes.DefaultMode.
type Pipe struct {
	Path string `json:"path" yaml:"path" toml:"path"`
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty"`
}

// Pool is a numbered set of pipes Dir/Prefix0 .. Dir/Prefix{Count-1}.
type Pool struct {
	Dir    string `json:"dir" yaml:"dir" toml:"dir"`
	Prefix string `json:"prefix" yaml:"prefix" toml:"prefix"`
	Count  int    `json:"count" yaml:"count" toml:"count"`
	Mode   string `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty"`
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Load reads and decodes the manifest at path.
func Load(fsys afero.Fs, path string) (*Manifest, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	m, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a manifest. Unknown fields are rejected.
func Parse(data []byte, format Format) (*Manifest, error) {
	var m Manifest

	switch format {
	case FormatYAML:
		if err := yaml.UnmarshalWithOptions(data, &m, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case FormatTOML:
		if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&m); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	case FormatJSON:
		if err := strictJSON.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return &m, nil
}

// Policy returns the manifest's umask policy, empty if unset.
func (m *Manifest) Policy() (pipes.UmaskPolicy, error) {
	if m.UmaskPolicy == "" {
		return "", nil
	}
	return pipes.ParseUmaskPolicy(m.UmaskPolicy)
}

// Requests expands the manifest into provisioning requests: explicit pipes
// first, then pools in order. Paths are not validated here; invalid paths
// fail per request during provisioning.
func (m *Manifest) Requests() ([]pipes.Request, error) {
	reqs := make([]pipes.Request, 0, len(m.Pipes))

	for i, p := range m.Pipes {
		mode, err := parseMode(p.Mode)
		if err != nil {
			return nil, fmt.Errorf("pipes[%d] %s: %w", i, p.Path, err)
		}
		reqs = append(reqs, pipes.Request{Path: p.Path, Mode: mode})
	}

	for i, pool := range m.Pools {
		mode, err := parseMode(pool.Mode)
		if err != nil {
			return nil, fmt.Errorf("pools[%d]: %w", i, err)
		}
		members, err := paths.Pool(pool.Dir, pool.Prefix, pool.Count)
		if err != nil {
			return nil, fmt.Errorf("pools[%d]: %w", i, err)
		}
		for _, path := range members {
			reqs = append(reqs, pipes.Request{Path: path, Mode: mode})
		}
	}

	return reqs, nil
}

// FromRequests builds a manifest listing reqs as explicit pipes.
func FromRequests(reqs []pipes.Request) *Manifest {
	m := &Manifest{Pipes: make([]Pipe, 0, len(reqs))}
	for _, r := range reqs {
		m.Pipes = append(m.Pipes, Pipe{Path: r.Path, Mode: r.Mode.Octal()})
	}
	return m
}

// Encode renders the manifest in the given format.
func (m *Manifest) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(m)
	case FormatTOML:
		return toml.Marshal(m)
	case FormatJSON:
		return sonic.ConfigStd.MarshalIndent(m, "", "  ")
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// ParseSpecs parses "path[:mode]" entries as given on the command line or
// in PIPEPROV_PIPES. The text after the last colon is taken as the mode if
// it parses as one, so paths may contain colons. A suffix made only of mode
// characters that still does not parse is a mistyped mode and an error.
func ParseSpecs(specs []string) ([]pipes.Request, error) {
	reqs := make([]pipes.Request, 0, len(specs))
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		req, err := parseSpec(spec)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func parseSpec(spec string) (pipes.Request, error) {
	i := strings.LastIndexByte(spec, ':')
	if i < 0 {
		return pipes.Request{Path: spec, Mode: pipes.DefaultMode}, nil
	}

	suffix := spec[i+1:]
	mode, err := pipes.ParseMode(suffix)
	switch {
	case err == nil:
		return pipes.Request{Path: spec[:i], Mode: mode}, nil
	case suffix != "" && strings.Trim(suffix, modeChars) == "":
		return pipes.Request{}, fmt.Errorf("%w %q: %w", ErrInvalidSpec, spec, err)
	}
	return pipes.Request{Path: spec, Mode: pipes.DefaultMode}, nil
}

func parseMode(s string) (pipes.Mode, error) {
	if s == "" {
		return pipes.DefaultMode, nil
	}
	return pipes.ParseMode(s)
}
