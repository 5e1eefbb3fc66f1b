// Package jit owns the LLVM execution engine: it compiles a module
// produced by src/lower against src/ir/llvm, calls the emitted `jit`
// function, and returns the resulting float64.
package jit

import (
	"fmt"
	"sync"

	goLLVM "tinygo.org/x/go-llvm"

	"genko/src/ast"
	"genko/src/frontend"
	"genko/src/ir"
	llvmir "genko/src/ir/llvm"
	"genko/src/lower"
)

// initOnce guards the process-wide, one-time native target registration
// the LLVM C API requires before any execution engine can be built.
var (
	initOnce sync.Once
	initErr  error
)

func initNative() error {
	initOnce.Do(func() {
		goLLVM.LinkInMCJIT()
		if err := goLLVM.InitializeNativeTarget(); err != nil {
			initErr = fmt.Errorf("jit: initialise native target: %w", err)
			return
		}
		if err := goLLVM.InitializeNativeAsmPrinter(); err != nil {
			initErr = fmt.Errorf("jit: initialise native asm printer: %w", err)
			return
		}
	})
	return initErr
}

// Run parses and lowers source, then JIT-compiles and calls the resulting
// `jit() -> double` function, returning its result.
func Run(source string) (float64, error) {
	nodes, err := frontend.Parse(source)
	if err != nil {
		return 0, err
	}
	return RunNodes(nodes)
}

// RunNodes lowers an already-parsed program and executes it. Run calls it
// after parsing; it is exported so a caller that already holds an AST can
// execute it without going through source text.
func RunNodes(nodes []ast.Node) (float64, error) {
	if err := initNative(); err != nil {
		return 0, err
	}

	mod, jitFn, dispose, err := build(nodes)
	if err != nil {
		return 0, err
	}
	defer dispose()

	raw, ok := llvmir.Raw(mod)
	if !ok {
		return 0, fmt.Errorf("jit: module was not produced by src/ir/llvm")
	}
	llvmFn, ok := llvmir.RawFunction(jitFn)
	if !ok {
		return 0, fmt.Errorf("jit: jit() was not produced by src/ir/llvm")
	}

	opts := goLLVM.NewMCJITCompilerOptions()
	opts.SetMCJITOptimizationLevel(0)
	engine, err := goLLVM.NewMCJITCompiler(raw, opts)
	if err != nil {
		return 0, fmt.Errorf("jit: create execution engine: %w", err)
	}
	defer engine.Dispose()

	result := engine.RunFunction(llvmFn, nil)
	return result.Float(goLLVM.DoubleType()), nil
}

// IRString renders the textual LLVM IR for source, for the CLI's --ir dump
// flag and for snapshot tests. It does not execute the module.
func IRString(source string) (string, error) {
	nodes, err := frontend.Parse(source)
	if err != nil {
		return "", err
	}
	mod, _, dispose, err := build(nodes)
	if err != nil {
		return "", err
	}
	defer dispose()

	raw, ok := llvmir.Raw(mod)
	if !ok {
		return "", fmt.Errorf("jit: module was not produced by src/ir/llvm")
	}
	return raw.String(), nil
}

// build lowers nodes against a fresh LLVM backend, returning the resulting
// module, its jit() entry point, and a cleanup function that disposes the
// backend's context. Callers must invoke dispose once the module and
// function handles are no longer needed.
func build(nodes []ast.Node) (mod ir.Module, jitFn ir.Function, dispose func(), err error) {
	backend := llvmir.NewBackend()
	mod, err = lower.New(backend).Lower(nodes)
	if err != nil {
		backend.Dispose()
		return nil, nil, nil, fmt.Errorf("jit: %w", err)
	}
	jitFn, ok := mod.LookupFunction("jit")
	if !ok {
		backend.Dispose()
		return nil, nil, nil, fmt.Errorf("jit: module has no jit() entry point")
	}
	return mod, jitFn, backend.Dispose, nil
}
