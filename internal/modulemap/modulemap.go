// Package modulemap implements the module-map boundary described in
// spec.md section 6: the core queries a module by name and gets back an
// AST plus a file path, without knowing how that module was found on
// disk. Grounded on original_source's ModuleMap.h/.cpp, adapted from a
// name -> ModuleInfo* map sourced from a single directory scan to a
// name -> resolved *ast.Module cache populated lazily as imports are
// followed, since this compiler parses a module's body only once it is
// actually needed rather than eagerly scanning every search path up
// front.
package modulemap

import (
	"os"
	"path/filepath"
	"strings"

	"secrecc/internal/ast"
	"secrecc/internal/errors"
	"secrecc/internal/parser"
)

// moduleExtension is the source file extension ModuleMap::addSearchPath
// filters on.
const moduleExtension = ".sc"

// ModuleMap resolves a module name to its parsed body by scanning a set
// of search-path directories for a file whose stem matches the name -
// ModuleMap::addModule/addSearchPath/findModule, generalized from a
// single eagerly-scanned directory to an ordered list searched in
// registration order (first match wins, mirroring how a process PATH is
// searched).
type ModuleMap struct {
	searchPaths []string
	parsed      map[string]*ast.Module
}

func New() *ModuleMap {
	return &ModuleMap{parsed: make(map[string]*ast.Module)}
}

// AddSearchPath registers a directory to be searched for modules. A
// nonexistent or non-directory path is silently accepted, matching
// addSearchPath's own `if (!exists(p)) return true;` tolerance - a
// missing search path is not itself an error, only a failed lookup is.
func (mm *ModuleMap) AddSearchPath(dir string) {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		mm.searchPaths = append(mm.searchPaths, dir)
	}
}

// locate finds the .sc file whose stem equals name on the first search
// path that has one, mirroring findModule's map lookup but performed on
// demand instead of against a pre-populated map.
func (mm *ModuleMap) locate(name string) (string, bool) {
	for _, dir := range mm.searchPaths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if filepath.Ext(e.Name()) != moduleExtension {
				continue
			}
			stem := strings.TrimSuffix(e.Name(), moduleExtension)
			if stem == name {
				return filepath.Join(dir, e.Name()), true
			}
		}
	}
	return "", false
}

// Resolve parses name (and, transitively, every module it imports) and
// returns an ast.Program whose Main is the requested module and whose
// Imports holds the rest of the transitive closure in the order their
// resolution finished, each module's own imports listed before it. pos is
// attributed to diagnostics raised against
// name itself (module-not-found, or name appearing in its own import
// cycle).
func (mm *ModuleMap) Resolve(name string, pos ast.Position) (*ast.Program, errors.Diagnostic, bool) {
	var imports []*ast.Module
	visiting := map[string]bool{}

	var resolve func(name string, pos ast.Position, stack []string) (*ast.Module, errors.Diagnostic, bool)
	resolve = func(name string, pos ast.Position, stack []string) (*ast.Module, errors.Diagnostic, bool) {
		if visiting[name] {
			cycle := append(append([]string{}, stack...), name)
			return nil, errors.ImportCycle(cycle, pos), false
		}
		if mod, ok := mm.parsed[name]; ok {
			return mod, errors.Diagnostic{}, true
		}

		path, found := mm.locate(name)
		if !found {
			return nil, errors.ModuleNotFound(name, pos), false
		}

		visiting[name] = true
		defer delete(visiting, name)

		mod, err := parser.ParseFile(path)
		if err != nil {
			return nil, errors.NewError(errors.ErrorSyntax, err.Error(), pos).Build(), false
		}
		mm.parsed[name] = mod

		nextStack := append(append([]string{}, stack...), name)
		for _, item := range mod.Items {
			imp, ok := item.(*ast.Import)
			if !ok {
				continue
			}
			imported, diag, ok := resolve(imp.ModuleName, imp.Pos(), nextStack)
			if !ok {
				return nil, diag, false
			}
			imports = append(imports, imported)
		}

		return mod, errors.Diagnostic{}, true
	}

	main, diag, ok := resolve(name, pos, nil)
	if !ok {
		return nil, diag, false
	}
	return &ast.Program{Main: main, Imports: dedupe(imports)}, errors.Diagnostic{}, true
}

// dedupe collapses a diamond import (two modules importing a common
// third module) down to one *ast.Module entry per pointer, preserving
// first-seen order.
func dedupe(mods []*ast.Module) []*ast.Module {
	seen := make(map[*ast.Module]bool, len(mods))
	out := make([]*ast.Module, 0, len(mods))
	for _, m := range mods {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
