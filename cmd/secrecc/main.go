// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	"secrecc/internal/ast"
	"secrecc/internal/checker"
	"secrecc/internal/codegen"
	"secrecc/internal/errors"
	"secrecc/internal/instantiate"
	"secrecc/internal/ir"
	"secrecc/internal/modulemap"
	"secrecc/internal/optimize"
	"secrecc/internal/parser"
	"secrecc/internal/types"
)

func main() {
	searchPath := flag.String("I", "", "comma-separated list of module search-path directories")
	noOptimize := flag.Bool("no-optimize", false, "skip the optimizer pipeline")
	verbose := flag.Bool("v", false, "enable verbose compiler tracing")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: secrecc [-I path1,path2] [-no-optimize] <file.sc>")
		os.Exit(1)
	}

	level := 0
	if *verbose {
		level = 2
	}
	commonlog.Configure(level, nil)

	path := flag.Arg(0)
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		os.Exit(1)
	}

	mainMod, err := parser.ParseString(path, string(source))
	if err != nil {
		reportParseError(string(source), err)
		os.Exit(1)
	}

	mm := modulemap.New()
	mm.AddSearchPath(filepath.Dir(path))
	for _, dir := range splitSearchPath(*searchPath) {
		mm.AddSearchPath(dir)
	}

	prog := &ast.Program{Main: mainMod, Imports: resolveImports(mm, mainMod)}

	log := errors.NewCompileLog("secrecc")
	ctx := types.NewContext()
	w := instantiate.New(ctx)
	c := checker.New(ctx, log, w)
	w.Attach(c)

	for _, imp := range prog.Imports {
		c.CheckModule(imp)
	}
	status := c.CheckModule(prog.Main)
	w.Drain()

	for _, m := range log.Messages() {
		fmt.Printf("%s[%s] %s:%d:%d: %s\n", m.Severity, m.Code, m.Pos.File, m.Pos.Line, m.Pos.Col, m.Text)
	}
	if log.HasErrors() || status == checker.ErrorFatal {
		color.Red("compilation failed: %s", path)
		os.Exit(1)
	}

	irProg := codegen.Generate(prog.Main, w.Generated(), ctx, c.RootScope())

	if !*noOptimize {
		optimize.NewPipeline().Run(irProg)
	}

	printProgram(irProg)
	color.Green("compiled %s successfully", path)
}

// resolveImports walks mod's own Import items (the module-map boundary
// only resolves what a module asks for, spec.md section 6) and reports a
// fatal error on the first failure - cycle or missing module - rather
// than attempting partial recovery.
func resolveImports(mm *modulemap.ModuleMap, mod *ast.Module) []*ast.Module {
	var out []*ast.Module
	for _, item := range mod.Items {
		imp, ok := item.(*ast.Import)
		if !ok {
			continue
		}
		resolved, diag, ok := mm.Resolve(imp.ModuleName, imp.Pos())
		if !ok {
			color.Red("%s", diag.Message)
			os.Exit(1)
		}
		out = append(out, resolved.Main)
		out = append(out, resolved.Imports...)
	}
	return out
}

func splitSearchPath(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printProgram(prog *ir.Program) {
	for _, p := range prog.All() {
		fmt.Println(ir.Print(p))
	}
}

// reportParseError prints a friendly caret-style parse error message.
func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("Unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("Syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("Syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}
