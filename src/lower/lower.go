// Package lower implements the recursive builder: the engine that walks a
// Genko syntax tree and drives an ir.Backend to build a single `jit`
// function. Everything here is written against the src/ir facade only; no
// concrete backend is imported.
package lower

import (
	"fmt"
	"math"

	"genko/src/ast"
	"genko/src/ir"
	"genko/src/util"
)

// jitFuncName is the name of the synthetic top-level function the engine
// always produces; an external harness calls it to run the program.
const jitFuncName = "jit"

// frame bundles the function, variable-frame and "current write head"
// state the engine tracks per active function, collapsing what would
// otherwise be three parallel stacks (function, block, variables) into
// one record pushed and popped together, so an error path can't leave
// them mismatched.
type frame struct {
	fn    ir.Function
	block ir.Block
	vars  map[string]ir.Slot
}

// Engine is the recursive builder. An Engine lowers exactly one program;
// it is not reusable across calls to Lower.
type Engine struct {
	backend ir.Backend
	b       ir.Builder
	mod     ir.Module
	frames  *util.Stack // of *frame
	globals map[string]ir.Slot

	// funcDecls records the function headers created during Lower's
	// first pass, so the second pass can define bodies without
	// redeclaring them and so a function may call another declared
	// later in source order.
	funcDecls map[*ast.Func]ir.Function
}

// New creates an Engine bound to backend. The backend is asked for exactly
// one Module and one Builder; an Engine does not share either across
// programs.
func New(backend ir.Backend) *Engine {
	return &Engine{
		backend:   backend,
		globals:   make(map[string]ir.Slot, 8),
		funcDecls: make(map[*ast.Func]ir.Function, 8),
	}
}

// Lower lowers nodes into a single `jit` function of type `() -> double`,
// returning the populated Module.
func (e *Engine) Lower(nodes []ast.Node) (ir.Module, error) {
	e.mod = e.backend.NewModule("genko")
	e.b = e.backend.NewBuilder()
	e.frames = &util.Stack{}

	fn := e.mod.AddFunction(jitFuncName, 0)
	entry := fn.AppendBlock("entry")
	top := &frame{fn: fn, block: entry, vars: make(map[string]ir.Slot, 8)}
	e.frames.Push(top)
	e.b.PositionAtEnd(entry)

	// First pass: declare every top-level function's header so forward
	// calls (a function invoking one declared later in source order)
	// resolve, then the second pass below defines bodies in order.
	for _, n := range nodes {
		if fdecl, ok := n.(*ast.Func); ok {
			e.funcDecls[fdecl] = e.mod.AddFunction(fdecl.Ident.Name, len(fdecl.Args))
		}
	}

	var (
		last    ir.Value
		hasLast bool
		err     error
	)
	for _, n := range nodes {
		var terminated bool
		last, hasLast, terminated, err = e.build(n)
		if err != nil {
			return nil, err
		}
		if terminated {
			break
		}
	}

	if !e.b.Terminated() {
		if !hasLast {
			last = e.b.ConstFloat(math.NaN())
		}
		e.b.Ret(last)
	}
	e.frames.Pop()
	return e.mod, nil
}

// current returns the frame at the top of the function stack.
func (e *Engine) current() *frame {
	return e.frames.Peek().(*frame)
}

// atTopLevel reports whether the engine is lowering the synthetic jit
// function itself, i.e. no user Func is currently being lowered.
func (e *Engine) atTopLevel() bool {
	return e.frames.Size() == 1
}

// resolve looks up name in the current function's locals first, falling
// back to module globals; there is no lexical closure over enclosing
// functions.
func (e *Engine) resolve(name string) (ir.Slot, bool) {
	if s, ok := e.current().vars[name]; ok {
		return s, true
	}
	s, ok := e.globals[name]
	return s, ok
}

func errf(format string, args ...interface{}) error {
	return fmt.Errorf("lowering error: "+format, args...)
}
