// Package config loads the xs.yaml configuration file.
//
// The file is validated against an embedded JSON schema before it is
// decoded, so that mistakes like misspelled keys are reported with their
// location instead of being silently ignored.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"src.xs.sh/pkg/debug"
	"src.xs.sh/pkg/emit"
	"src.xs.sh/pkg/logutil"
	"src.xs.sh/pkg/parse"
)

var logger = logutil.GetLogger("[config] ")

// FileName is the name of the configuration file looked up by Find.
const FileName = "xs.yaml"

//go:embed schema.json
var schemaJSON string

// Config is the content of a configuration file.
type Config struct {
	// Whether the last statement of a program needs a semicolon.
	RequireTermination bool `yaml:"require-termination"`
	// Path of the database keeping the REPL history.
	HistoryDB string `yaml:"history-db"`
	// Packages to load before running programs, as if with #r.
	References []Reference `yaml:"references"`
	Debug      Debug       `yaml:"debug"`
	Emit       Emit        `yaml:"emit"`
}

// Reference names a host package and the versions that are acceptable.
type Reference struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Constraint parses the version constraint. It is nil if no version is
// given.
func (r Reference) Constraint() (*semver.Constraints, error) {
	if r.Version == "" {
		return nil, nil
	}
	return semver.NewConstraint(r.Version)
}

// String returns the reference in the syntax of #r directives.
func (r Reference) String() string {
	if r.Version == "" {
		return r.Name
	}
	return r.Name + ", " + r.Version
}

// ParseReference parses a reference written like the argument of a #r
// directive, as accepted by the --ref flag.
func ParseReference(s string) (Reference, error) {
	name, c, err := parse.ParseReference(s)
	if err != nil {
		return Reference{}, err
	}
	r := Reference{Name: name}
	if c != nil {
		_, version, _ := strings.Cut(s, ",")
		r.Version = strings.TrimSpace(version)
	}
	return r, nil
}

// Debug configures the debugger.
type Debug struct {
	Mode        string   `yaml:"mode"`
	Breakpoints []string `yaml:"breakpoints"`
}

// Debugger builds a debugger calling handler. It returns nil if the mode is
// none or absent. Breakpoints are validated in either case.
func (d Debug) Debugger(handler func(debug.Capture)) (*debug.Debugger, error) {
	mode := debug.None
	if d.Mode != "" {
		var err error
		if mode, err = debug.ParseMode(d.Mode); err != nil {
			return nil, err
		}
	}
	var breakpoints []debug.Breakpoint
	for _, s := range d.Breakpoints {
		b, err := debug.ParseBreakpoint(s)
		if err != nil {
			return nil, err
		}
		breakpoints = append(breakpoints, b)
	}
	if mode == debug.None {
		return nil, nil
	}
	return &debug.Debugger{Mode: mode, Breakpoints: breakpoints, Handler: handler}, nil
}

// Emit holds the names used by the Go emitter.
type Emit struct {
	Package string `yaml:"package"`
	Type    string `yaml:"type"`
	Func    string `yaml:"func"`
}

// Options converts the configuration to emitter options.
func (e Emit) Options() emit.Options {
	return emit.Options{Package: e.Package, Type: e.Type, Func: e.Func}
}

var schema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if compiler.Formats == nil {
		compiler.Formats = make(map[string]func(any) bool)
	}
	compiler.Formats["semver-constraint"] = func(v any) bool {
		s, ok := v.(string)
		if !ok {
			return true
		}
		_, err := semver.NewConstraint(s)
		return err == nil
	}
	compiler.Formats["breakpoint"] = func(v any) bool {
		s, ok := v.(string)
		if !ok {
			return true
		}
		_, err := debug.ParseBreakpoint(s)
		return err == nil
	}
	compiler.Formats["go-identifier"] = func(v any) bool {
		s, ok := v.(string)
		return !ok || token.IsIdentifier(s)
	}
	const url = "schema://xs.json"
	if err := compiler.AddResource(url, strings.NewReader(schemaJSON)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(url)
}

// Parse validates and decodes the content of a configuration file. The name
// is used in error messages.
func Parse(name string, data []byte) (*Config, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if doc == nil {
		// Empty file.
		return &Config{}, nil
	}
	instance, err := toJSON(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := schema.Validate(instance); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &cfg, nil
}

// Converts a decoded YAML document to the representation the validator
// expects, the one encoding/json produces.
func toJSON(doc any) (any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	err = dec.Decode(&v)
	return v, err
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	logger.Println("loading", path)
	return Parse(path, data)
}

// Find looks for FileName in dir and its ancestors, and loads the first one
// found. If there is none, it returns an empty configuration.
func Find(dir string) (*Config, string, error) {
	for {
		path := filepath.Join(dir, FileName)
		cfg, err := Load(path)
		if err == nil {
			return cfg, path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, path, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return &Config{}, "", nil
		}
		dir = parent
	}
}
