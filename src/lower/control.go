package lower

import (
	"math"

	"genko/src/ast"
	"genko/src/ir"
)

func (e *Engine) buildInit(node *ast.Init) (ir.Value, bool, bool, error) {
	val, has, terminated, err := e.build(node.Expr)
	if err != nil {
		return nil, false, false, err
	}
	if terminated {
		return nil, false, true, nil
	}
	if !has {
		return nil, false, false, errf("initialiser of %q produced no value", node.Ident.Name)
	}
	f := e.current()
	slot := e.b.AllocaInEntry(f.fn, node.Ident.Name)
	e.b.Store(slot, val)
	f.vars[node.Ident.Name] = slot
	return nil, false, false, nil
}

func (e *Engine) buildGlobalInit(node *ast.GlobalInit) (ir.Value, bool, bool, error) {
	if !e.atTopLevel() {
		return nil, false, false, errf("global %q declared inside a function", node.Ident.Name)
	}
	val, err := evalConst(node.Expr)
	if err != nil {
		return nil, false, false, errf("global %q: %s", node.Ident.Name, err)
	}
	e.globals[node.Ident.Name] = e.mod.AddGlobal(node.Ident.Name, val)
	return nil, false, false, nil
}

func (e *Engine) buildAssign(node *ast.Assign) (ir.Value, bool, bool, error) {
	slot, ok := e.resolve(node.Ident.Name)
	if !ok {
		return nil, false, false, errf("assignment to unresolved identifier %q", node.Ident.Name)
	}
	val, has, terminated, err := e.build(node.Expr)
	if err != nil {
		return nil, false, false, err
	}
	if terminated {
		return nil, false, true, nil
	}
	if !has {
		return nil, false, false, errf("right-hand side of assignment to %q produced no value", node.Ident.Name)
	}
	e.b.Store(slot, val)
	return val, true, false, nil
}

func (e *Engine) buildFunc(node *ast.Func) (ir.Value, bool, bool, error) {
	if !e.atTopLevel() {
		return nil, false, false, errf("function %q declared inside another function", node.Ident.Name)
	}

	fn, ok := e.funcDecls[node]
	if !ok {
		// Nested Func already rejected above; this only covers a Func
		// reached by some path other than Lower's top-level first pass.
		fn = e.mod.AddFunction(node.Ident.Name, len(node.Args))
	}
	entry := fn.AppendBlock("entry")
	f := &frame{fn: fn, block: entry, vars: make(map[string]ir.Slot, len(node.Args))}
	e.frames.Push(f)
	e.b.PositionAtEnd(entry)

	params := fn.Params()
	for i, name := range node.Args {
		slot := e.b.AllocaInEntry(fn, name)
		e.b.Store(slot, params[i])
		f.vars[name] = slot
	}

	_, _, terminated, err := e.build(node.Body)
	if err != nil {
		return nil, false, false, err
	}
	if !terminated && !e.b.Terminated() {
		// A function's return value comes only from an explicit Return;
		// falling off the end never falls back to the body's tail value,
		// unlike a Block.
		e.b.Ret(e.b.ConstFloat(0.0))
	}

	e.frames.Pop()
	e.b.PositionAtEnd(e.current().block)
	return nil, false, false, nil
}

func (e *Engine) buildCall(node *ast.Call) (ir.Value, bool, bool, error) {
	fn, ok := e.mod.LookupFunction(node.Ident.Name)
	if !ok {
		return nil, false, false, errf("call to undeclared function %q", node.Ident.Name)
	}
	if fn.Arity() != len(node.Args) {
		return nil, false, false, errf("function %q expects %d argument(s), got %d",
			node.Ident.Name, fn.Arity(), len(node.Args))
	}

	args := make([]ir.Value, len(node.Args))
	for i, a := range node.Args {
		v, has, terminated, err := e.build(a)
		if err != nil {
			return nil, false, false, err
		}
		if terminated {
			return nil, false, true, nil
		}
		if !has {
			return nil, false, false, errf("argument %d to %q produced no value", i, node.Ident.Name)
		}
		args[i] = v
	}
	return e.b.Call(fn, args), true, false, nil
}

func (e *Engine) buildReturn(node *ast.Return) (ir.Value, bool, bool, error) {
	val, has, terminated, err := e.build(node.Ret)
	if err != nil {
		return nil, false, false, err
	}
	if terminated {
		return nil, false, true, nil
	}
	if !has {
		return nil, false, false, errf("return expression produced no value")
	}
	e.b.Ret(val)
	return nil, false, true, nil
}

// buildCond lowers `if`/`then`/`else` via a phi node combining the two
// branches' values. An absent `else` still emits an empty branch that
// yields a NaN sentinel, so every non-void Cond uniformly produces one
// phi'd value regardless of whether an else clause was written.
func (e *Engine) buildCond(node *ast.Cond) (ir.Value, bool, bool, error) {
	condVal, hasCond, terminated, err := e.build(node.Cond)
	if err != nil {
		return nil, false, false, err
	}
	if terminated {
		return nil, false, true, nil
	}
	if !hasCond {
		return nil, false, false, errf("if condition produced no value")
	}
	cmp := e.b.FCmp(ir.ONE, condVal, e.b.ConstFloat(0.0))

	f := e.current()
	thenB := f.fn.AppendBlock("then")
	elseB := f.fn.AppendBlock("else")
	contB := f.fn.AppendBlock("cont")
	e.b.CondBr(cmp, thenB, elseB)

	f.block = thenB
	e.b.PositionAtEnd(thenB)
	thenVal, thenHas, thenTerm, err := e.build(node.Cons)
	if err != nil {
		return nil, false, false, err
	}
	thenEnd := e.b.CurrentBlock()
	if !thenTerm {
		if !thenHas {
			thenVal = e.b.ConstFloat(math.NaN())
		}
		e.b.Br(contB)
	}

	f.block = elseB
	e.b.PositionAtEnd(elseB)
	var (
		elseVal  ir.Value
		elseHas  bool
		elseTerm bool
	)
	if node.Alter != nil {
		elseVal, elseHas, elseTerm, err = e.build(node.Alter)
		if err != nil {
			return nil, false, false, err
		}
	}
	elseEnd := e.b.CurrentBlock()
	if !elseTerm {
		if !elseHas {
			elseVal = e.b.ConstFloat(math.NaN())
		}
		e.b.Br(contB)
	}

	if thenTerm && elseTerm {
		// Both branches returned; cont is unreachable but was already
		// appended. Nothing lowers into it.
		f.block = contB
		e.b.PositionAtEnd(contB)
		return nil, false, true, nil
	}

	f.block = contB
	e.b.PositionAtEnd(contB)
	incoming := make([]ir.Incoming, 0, 2)
	if !thenTerm {
		incoming = append(incoming, ir.Incoming{Value: thenVal, Block: thenEnd})
	}
	if !elseTerm {
		incoming = append(incoming, ir.Incoming{Value: elseVal, Block: elseEnd})
	}
	return e.b.Phi(incoming), true, false, nil
}

// buildWhile lowers a pre-tested loop by duplicating the condition: it is
// lowered twice, once at loop entry and once at the tail of the body, in
// place of a separate header block.
func (e *Engine) buildWhile(node *ast.While) (ir.Value, bool, bool, error) {
	f := e.current()
	loopB := f.fn.AppendBlock("loop")
	exitB := f.fn.AppendBlock("exit")

	entryCond, err := e.buildLoopCond(node.Cond)
	if err != nil {
		return nil, false, false, err
	}
	e.b.CondBr(entryCond, loopB, exitB)

	f.block = loopB
	e.b.PositionAtEnd(loopB)
	_, _, bodyTerm, err := e.build(node.Body)
	if err != nil {
		return nil, false, false, err
	}
	if !bodyTerm {
		tailCond, err := e.buildLoopCond(node.Cond)
		if err != nil {
			return nil, false, false, err
		}
		e.b.CondBr(tailCond, loopB, exitB)
	}

	f.block = exitB
	e.b.PositionAtEnd(exitB)
	return nil, false, false, nil
}

func (e *Engine) buildLoopCond(cond ast.Node) (ir.Value, error) {
	val, has, terminated, err := e.build(cond)
	if err != nil {
		return nil, err
	}
	if terminated {
		return nil, errf("while condition must not itself return")
	}
	if !has {
		return nil, errf("while condition produced no value")
	}
	return e.b.FCmp(ir.ONE, val, e.b.ConstFloat(0.0)), nil
}
