package lower

import (
	"genko/src/ast"
	"genko/src/ir"
)

// build is the engine's single exposed operation: it lowers one node,
// returning its value (if any), whether a value was produced, and whether
// the current block was sealed by an explicit Return somewhere beneath n.
// Callers that are themselves inside a Block must stop lowering further
// siblings once terminated is true.
func (e *Engine) build(n ast.Node) (value ir.Value, hasValue bool, terminated bool, err error) {
	// Reposition the write head to the top of the block stack before
	// every visit: a nested construct lowered while building a sibling
	// may have left the builder pointed elsewhere.
	e.b.PositionAtEnd(e.current().block)

	switch node := n.(type) {
	case *ast.Number:
		return e.b.ConstFloat(node.Value), true, false, nil
	case *ast.Bool:
		if node.Value {
			return e.b.ConstFloat(1.0), true, false, nil
		}
		return e.b.ConstFloat(0.0), true, false, nil
	case *ast.Ident:
		return e.buildIdent(node)
	case *ast.Unary:
		return e.buildUnary(node)
	case *ast.Binary:
		return e.buildBinary(node)
	case *ast.Block:
		return e.buildBlock(node)
	case *ast.Init:
		return e.buildInit(node)
	case *ast.GlobalInit:
		return e.buildGlobalInit(node)
	case *ast.Assign:
		return e.buildAssign(node)
	case *ast.Func:
		return e.buildFunc(node)
	case *ast.Call:
		return e.buildCall(node)
	case *ast.Cond:
		return e.buildCond(node)
	case *ast.While:
		return e.buildWhile(node)
	case *ast.Return:
		return e.buildReturn(node)
	default:
		return nil, false, false, errf("unhandled node type %T", n)
	}
}

func (e *Engine) buildIdent(node *ast.Ident) (ir.Value, bool, bool, error) {
	slot, ok := e.resolve(node.Name)
	if !ok {
		return nil, false, false, errf("unresolved identifier %q", node.Name)
	}
	return e.b.Load(slot), true, false, nil
}

func (e *Engine) buildUnary(node *ast.Unary) (ir.Value, bool, bool, error) {
	child, hasChild, terminated, err := e.build(node.Child)
	if err != nil {
		return nil, false, false, err
	}
	if terminated {
		return nil, false, true, nil
	}
	if !hasChild {
		return nil, false, false, errf("operand of unary %s produced no value", node.Op)
	}
	switch node.Op {
	case ast.Neg:
		return e.b.FSub(e.b.ConstFloat(0.0), child), true, false, nil
	case ast.Not:
		// Preserved bug-for-bug from the source: `!x` lowers to `1.0 -
		// x`, not `x == 0.0`, so `!2` is `-1`. See DESIGN.md.
		return e.b.FSub(e.b.ConstFloat(1.0), child), true, false, nil
	default:
		return nil, false, false, errf("unhandled unary operator %s", node.Op)
	}
}

func (e *Engine) buildBinary(node *ast.Binary) (ir.Value, bool, bool, error) {
	lhs, hasLhs, terminated, err := e.build(node.Lhs)
	if err != nil {
		return nil, false, false, err
	}
	if terminated {
		return nil, false, true, nil
	}
	if !hasLhs {
		return nil, false, false, errf("left operand of %s produced no value", node.Op)
	}
	rhs, hasRhs, terminated, err := e.build(node.Rhs)
	if err != nil {
		return nil, false, false, err
	}
	if terminated {
		return nil, false, true, nil
	}
	if !hasRhs {
		return nil, false, false, errf("right operand of %s produced no value", node.Op)
	}

	switch node.Op {
	case ast.Add:
		return e.b.FAdd(lhs, rhs), true, false, nil
	case ast.Sub:
		return e.b.FSub(lhs, rhs), true, false, nil
	case ast.Mul:
		return e.b.FMul(lhs, rhs), true, false, nil
	case ast.Div:
		return e.b.FDiv(lhs, rhs), true, false, nil
	case ast.Pow:
		return e.buildPow(lhs, rhs), true, false, nil
	case ast.Modulo:
		q := e.b.FDiv(lhs, rhs)
		qt := e.b.FPToSITrunc(q)
		return e.b.FSub(lhs, e.b.FMul(rhs, qt)), true, false, nil
	case ast.Eq:
		return e.b.UIToFPBool(e.b.FCmp(ir.UEQ, lhs, rhs)), true, false, nil
	case ast.Ne:
		return e.b.UIToFPBool(e.b.FCmp(ir.UNE, lhs, rhs)), true, false, nil
	case ast.Lt:
		return e.b.UIToFPBool(e.b.FCmp(ir.ULT, lhs, rhs)), true, false, nil
	case ast.Le:
		return e.b.UIToFPBool(e.b.FCmp(ir.ULE, lhs, rhs)), true, false, nil
	case ast.Gt:
		return e.b.UIToFPBool(e.b.FCmp(ir.UGT, lhs, rhs)), true, false, nil
	case ast.Ge:
		return e.b.UIToFPBool(e.b.FCmp(ir.UGE, lhs, rhs)), true, false, nil
	case ast.And:
		lb := e.b.FCmp(ir.UNE, lhs, e.b.ConstFloat(0.0))
		rb := e.b.FCmp(ir.UNE, rhs, e.b.ConstFloat(0.0))
		return e.b.UIToFPBool(e.b.BoolAnd(lb, rb)), true, false, nil
	case ast.Or:
		lb := e.b.FCmp(ir.UNE, lhs, e.b.ConstFloat(0.0))
		rb := e.b.FCmp(ir.UNE, rhs, e.b.ConstFloat(0.0))
		return e.b.UIToFPBool(e.b.BoolOr(lb, rb)), true, false, nil
	default:
		return nil, false, false, errf("unhandled binary operator %s", node.Op)
	}
}

// powFuncName names the LLVM intrinsic declared on demand to implement Pow;
// declaring a function under this exact name lets LLVM recognise it as the
// `llvm.pow.f64` intrinsic rather than an ordinary call.
const powFuncName = "llvm.pow.f64"

func (e *Engine) buildPow(lhs, rhs ir.Value) ir.Value {
	fn, ok := e.mod.LookupFunction(powFuncName)
	if !ok {
		fn = e.mod.AddFunction(powFuncName, 2)
	}
	return e.b.Call(fn, []ir.Value{lhs, rhs})
}

func (e *Engine) buildBlock(node *ast.Block) (ir.Value, bool, bool, error) {
	var (
		last    ir.Value
		hasLast bool
	)
	for _, child := range node.Children {
		v, has, terminated, err := e.build(child)
		if err != nil {
			return nil, false, false, err
		}
		if terminated {
			// The block is sealed; remaining siblings are dead code
			// and are never lowered.
			return v, has, true, nil
		}
		last, hasLast = v, has
	}
	return last, hasLast, false, nil
}
