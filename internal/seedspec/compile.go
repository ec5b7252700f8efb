// Package seedspec compiles declarative store definitions written in CUE.
//
// A seed spec names a store, supplies its initial data, and lists the
// builtin mutations and actions it uses:
//
//	store: {
//		name:      "counter"
//		data:      { count: 0 }
//		mutations: ["set", "inc"]
//		actions:   ["setLater"]
//	}
//
// File-driven seeds cannot carry function values, so mutations and actions
// are names resolved against a registry when the seed is built.
package seedspec

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/lineus/simplestore/internal/registry"
	"github.com/lineus/simplestore/internal/store"
)

// Spec is a compiled store definition.
type Spec struct {
	// Name identifies the store in traces and CLI output.
	Name string

	// Data is the initial data mapping. CUE integers decode as int64.
	Data map[string]any

	// Mutations and Actions list builtin names to resolve via a registry.
	Mutations []string
	Actions   []string
}

// CompileFile reads a CUE file and compiles the store definition in it.
func CompileFile(path string) (*Spec, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed spec: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	return Compile(v.LookupPath(cue.ParsePath("store")))
}

// Compile parses a CUE value into a Spec. Uses the CUE SDK's Go API
// directly (not CLI subprocess). The value should be the store struct
// itself.
func Compile(v cue.Value) (*Spec, error) {
	if !v.Exists() {
		return nil, &CompileError{
			Field:   "store",
			Message: "store definition is required",
		}
	}
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &Spec{Data: map[string]any{}}

	// name (required)
	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   "name",
			Message: "name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	spec.Name = name

	// data (optional, can be empty)
	dataVal := v.LookupPath(cue.ParsePath("data"))
	if dataVal.Exists() {
		if err := dataVal.Decode(&spec.Data); err != nil {
			return nil, formatCUEError(err)
		}
	}

	// mutations / actions (optional lists of builtin names)
	spec.Mutations, err = stringList(v, "mutations")
	if err != nil {
		return nil, err
	}
	spec.Actions, err = stringList(v, "actions")
	if err != nil {
		return nil, err
	}

	return spec, nil
}

// Seed resolves the spec's mutation and action names through reg into a
// concrete store seed.
func (s *Spec) Seed(reg *registry.Registry) (*store.Seed, error) {
	mutations, err := reg.Mutations(s.Mutations)
	if err != nil {
		return nil, fmt.Errorf("seed spec %q: %w", s.Name, err)
	}
	actions, err := reg.Actions(s.Actions)
	if err != nil {
		return nil, fmt.Errorf("seed spec %q: %w", s.Name, err)
	}

	return &store.Seed{
		Data:      s.Data,
		Mutations: mutations,
		Actions:   actions,
	}, nil
}

func stringList(v cue.Value, field string) ([]string, error) {
	lv := v.LookupPath(cue.ParsePath(field))
	if !lv.Exists() {
		return nil, nil
	}

	var names []string
	if err := lv.Decode(&names); err != nil {
		return nil, formatCUEError(err)
	}
	for i, name := range names {
		if name == "" {
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("entry %d is empty", i),
				Pos:     lv.Pos(),
			}
		}
	}
	return names, nil
}

// CompileError is a structured seed-spec compilation failure with CUE
// position info when available.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
