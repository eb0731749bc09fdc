// Package schema validates git-hooks configuration files against an
// embedded CUE schema.
package schema

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	yamlv3 "gopkg.in/yaml.v3"
)

//go:embed schemas/*.cue
var schemaFS embed.FS

const (
	schemaFile = "schemas/config.cue"
	configDef  = "#Config"
)

// Violation is one schema failure at a field path.
type Violation struct {
	Path    string
	Message string
}

// String renders the violation as "path: message".
func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// Error reports the violations of a config file.
type Error struct {
	File       string
	Violations []Violation
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "config file %s does not match schema", e.File)
	for _, v := range e.Violations {
		b.WriteString("\n  ")
		b.WriteString(v.String())
	}
	return b.String()
}

// Validator handles CUE validation of config data
type Validator struct {
	ctx *cue.Context
	def cue.Value
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	content, err := schemaFS.ReadFile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("reading embedded schema: %w", err)
	}

	ctx := cuecontext.New()
	inst := ctx.CompileBytes(content, cue.Filename("config.cue"))
	if err := inst.Err(); err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}

	def := inst.LookupPath(cue.ParsePath(configDef))
	if !def.Exists() {
		return nil, fmt.Errorf("schema has no %s definition", configDef)
	}

	return &Validator{ctx: ctx, def: def}, nil
}

// Validate checks decoded config data. A nil map is valid.
func (v *Validator) Validate(data map[string]any) ([]Violation, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dataValue := v.ctx.Encode(data)
	if err := dataValue.Err(); err != nil {
		return nil, fmt.Errorf("error encoding data: %w", err)
	}

	unified := v.def.Unify(dataValue)
	if err := unified.Err(); err != nil {
		return violations(err), nil
	}
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return violations(err), nil
	}
	return nil, nil
}

// ValidateBytes decodes YAML or JSON content and validates it.
func (v *Validator) ValidateBytes(content []byte) ([]Violation, error) {
	var data map[string]any
	if err := yamlv3.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return v.Validate(data)
}

// ValidateFile reads and validates the config file at path.
func ValidateFile(path string) ([]Violation, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	v, err := NewValidator()
	if err != nil {
		return nil, err
	}
	return v.ValidateBytes(content)
}

// violations flattens a CUE error into path-addressed violations, sorted by
// path and without duplicates.
func violations(err error) []Violation {
	seen := make(map[Violation]bool)
	var out []Violation
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		v := Violation{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		out = append(out, Violation{Message: err.Error()})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Message < out[j].Message
	})
	return out
}
