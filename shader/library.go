// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shader holds the WGSL shader library bundled with the renderer
// and resolves shader functions by entry-point name.
//
// A Library is loaded once from an fs.FS containing .wgsl files. Every file
// is parsed, lowered and validated with naga; a file that fails any step
// makes the whole load fail. The entry points naga reports are indexed by
// name together with their pipeline stage, so the renderer can look up
// "vertex_main" and "fragment_main" without knowing which file declares
// them.
//
// Usage:
//
//	lib, err := shader.Default()
//	if err != nil {
//	    return err
//	}
//	vs, err := lib.Function("vertex_main", shader.StageVertex)
package shader

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

//go:embed *.wgsl
var bundled embed.FS

// Library errors.
var (
	// ErrCompile is returned when a WGSL source in the library fails to compile.
	ErrCompile = errors.New("shader: compile failed")

	// ErrFunctionNotFound is returned when no entry point with the requested
	// name and stage exists in the library.
	ErrFunctionNotFound = errors.New("shader: function not found")

	// ErrEmptyLibrary is returned when the file system holds no .wgsl files.
	ErrEmptyLibrary = errors.New("shader: library has no WGSL sources")
)

// Stage is the pipeline stage an entry point belongs to.
type Stage int

const (
	// StageVertex marks an @vertex entry point.
	StageVertex Stage = iota + 1
	// StageFragment marks an @fragment entry point.
	StageFragment
	// StageCompute marks a @compute entry point.
	StageCompute
)

// String returns the WGSL attribute name of the stage.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Function is a named shader entry point together with the WGSL module
// that declares it.
type Function struct {
	// Name is the entry-point name, e.g. "vertex_main".
	Name string

	// Stage is the pipeline stage of the entry point.
	Stage Stage

	// File is the library file the entry point was found in.
	File string

	// Source is the full WGSL source of File.
	Source string
}

// Library is an immutable set of compiled-and-validated WGSL modules.
type Library struct {
	sources   map[string]string
	functions map[string]Function
}

// Default loads the library bundled with this package.
func Default() (*Library, error) {
	return Load(bundled)
}

// Load reads every .wgsl file at the root of fsys, lowers it to naga IR and
// indexes the module's entry points.
//
// Returns ErrEmptyLibrary if no sources are found and ErrCompile (wrapped
// with the file name and naga's diagnostic) if any source fails to compile.
func Load(fsys fs.FS) (*Library, error) {
	names, err := fs.Glob(fsys, "*.wgsl")
	if err != nil {
		return nil, fmt.Errorf("shader: list sources: %w", err)
	}
	if len(names) == 0 {
		return nil, ErrEmptyLibrary
	}
	sort.Strings(names)

	lib := &Library{
		sources:   make(map[string]string, len(names)),
		functions: make(map[string]Function),
	}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("shader: read %s: %w", name, err)
		}
		src := string(data)
		module, err := compile(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCompile, name, err)
		}
		lib.sources[name] = src
		for _, fn := range entryPoints(name, src, module) {
			if prev, dup := lib.functions[fn.Name]; dup {
				return nil, fmt.Errorf("%w: %s: entry point %q already declared in %s",
					ErrCompile, name, fn.Name, prev.File)
			}
			lib.functions[fn.Name] = fn
		}
	}
	return lib, nil
}

// compile parses, lowers and validates a WGSL source.
func compile(src string) (*ir.Module, error) {
	ast, err := naga.Parse(src)
	if err != nil {
		return nil, err
	}
	module, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return nil, err
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, err
	}
	if len(verrs) > 0 {
		return nil, verrs[0]
	}
	return module, nil
}

// entryPoints lists the stage functions of a lowered module.
func entryPoints(file, src string, module *ir.Module) []Function {
	fns := make([]Function, 0, len(module.EntryPoints))
	for _, ep := range module.EntryPoints {
		stage, ok := stageOf(ep.Stage)
		if !ok {
			continue
		}
		fns = append(fns, Function{
			Name:   ep.Name,
			Stage:  stage,
			File:   file,
			Source: src,
		})
	}
	return fns
}

// stageOf maps a naga stage to a Stage. Mesh and task stages have no
// counterpart.
func stageOf(s ir.ShaderStage) (Stage, bool) {
	switch s {
	case ir.StageVertex:
		return StageVertex, true
	case ir.StageFragment:
		return StageFragment, true
	case ir.StageCompute:
		return StageCompute, true
	default:
		return 0, false
	}
}

// Function returns the entry point called name. The entry point must belong
// to stage; a function of the same name in a different stage is reported as
// ErrFunctionNotFound.
func (l *Library) Function(name string, stage Stage) (Function, error) {
	fn, ok := l.functions[name]
	if !ok {
		return Function{}, fmt.Errorf("%w: %q", ErrFunctionNotFound, name)
	}
	if fn.Stage != stage {
		return Function{}, fmt.Errorf("%w: %q is a %s function, want %s",
			ErrFunctionNotFound, name, fn.Stage, stage)
	}
	return fn, nil
}

// Names returns the sorted entry-point names in the library.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.functions))
	for name := range l.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Files returns the sorted source file names in the library.
func (l *Library) Files() []string {
	files := make([]string, 0, len(l.sources))
	for name := range l.sources {
		files = append(files, name)
	}
	sort.Strings(files)
	return files
}

// Label returns a debug label for the module declaring fn, e.g. "triangle".
func (fn Function) Label() string {
	return strings.TrimSuffix(path.Base(fn.File), ".wgsl")
}
