package lower

import "genko/src/ast"

// evalConst folds the constant-only subset of expressions a GlobalInit
// initialiser may use: literals, unary `-`/`!`, and `+ - * /` over other
// constants. Any other operator, and anything reaching an identifier,
// call, or control-flow node, is rejected.
func evalConst(n ast.Node) (float64, error) {
	switch node := n.(type) {
	case *ast.Number:
		return node.Value, nil
	case *ast.Bool:
		if node.Value {
			return 1.0, nil
		}
		return 0.0, nil
	case *ast.Unary:
		v, err := evalConst(node.Child)
		if err != nil {
			return 0, err
		}
		switch node.Op {
		case ast.Neg:
			return -v, nil
		case ast.Not:
			return 1.0 - v, nil
		default:
			return 0, errf("unsupported constant unary operator %s", node.Op)
		}
	case *ast.Binary:
		lhs, err := evalConst(node.Lhs)
		if err != nil {
			return 0, err
		}
		rhs, err := evalConst(node.Rhs)
		if err != nil {
			return 0, err
		}
		switch node.Op {
		case ast.Add:
			return lhs + rhs, nil
		case ast.Sub:
			return lhs - rhs, nil
		case ast.Mul:
			return lhs * rhs, nil
		case ast.Div:
			return lhs / rhs, nil
		default:
			return 0, errf("unsupported constant binary operator %s", node.Op)
		}
	default:
		return 0, errf("expression is not a compile-time constant")
	}
}
