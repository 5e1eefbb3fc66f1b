// Mirrors, one test per grammar rule, the test suite that accompanied the
// original Genko parser; each case exercises Parse on one small fragment
// and asserts the shape of the returned ast.Node tree directly rather than
// through a golden file.

package frontend

import (
	"math"
	"testing"

	"genko/src/ast"
)

func parseOne(t *testing.T, src string) ast.Node {
	t.Helper()
	nodes, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	if len(nodes) != 1 {
		t.Fatalf("Parse(%q): expected 1 top-level node, got %d", src, len(nodes))
	}
	return nodes[0]
}

func TestParseNumber(t *testing.T) {
	n, ok := parseOne(t, "3.5;").(*ast.Number)
	if !ok {
		t.Fatalf("expected *ast.Number")
	}
	if n.Value != 3.5 {
		t.Errorf("expected 3.5, got %v", n.Value)
	}
}

func TestParseComments(t *testing.T) {
	n, ok := parseOne(t, "# a comment\n1; // another\n").(*ast.Number)
	if !ok {
		t.Fatalf("expected *ast.Number")
	}
	if n.Value != 1 {
		t.Errorf("expected 1, got %v", n.Value)
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	// 1 + 2 * 3 must bind as 1 + (2 * 3).
	n, ok := parseOne(t, "1 + 2 * 3;").(*ast.Binary)
	if !ok {
		t.Fatalf("expected *ast.Binary")
	}
	if n.Op != ast.Add {
		t.Fatalf("expected top operator Add, got %v", n.Op)
	}
	rhs, ok := n.Rhs.(*ast.Binary)
	if !ok || rhs.Op != ast.Mul {
		t.Fatalf("expected rhs to be a Mul, got %#v", n.Rhs)
	}
}

func TestParsePowRightAssociative(t *testing.T) {
	// 2 ^ 3 ^ 2 must bind as 2 ^ (3 ^ 2).
	n, ok := parseOne(t, "2 ^ 3 ^ 2;").(*ast.Binary)
	if !ok || n.Op != ast.Pow {
		t.Fatalf("expected top-level Pow, got %#v", n)
	}
	if _, ok := n.Lhs.(*ast.Number); !ok {
		t.Fatalf("expected lhs to be a literal, got %#v", n.Lhs)
	}
	rhs, ok := n.Rhs.(*ast.Binary)
	if !ok || rhs.Op != ast.Pow {
		t.Fatalf("expected rhs to be nested Pow, got %#v", n.Rhs)
	}
}

func TestParseUnary(t *testing.T) {
	n, ok := parseOne(t, "-!a;").(*ast.Unary)
	if !ok || n.Op != ast.Neg {
		t.Fatalf("expected outer Neg, got %#v", n)
	}
	inner, ok := n.Child.(*ast.Unary)
	if !ok || inner.Op != ast.Not {
		t.Fatalf("expected inner Not, got %#v", n.Child)
	}
	if _, ok := inner.Child.(*ast.Ident); !ok {
		t.Fatalf("expected identifier, got %#v", inner.Child)
	}
}

func TestParseIdentifier(t *testing.T) {
	n, ok := parseOne(t, "foo;").(*ast.Ident)
	if !ok || n.Name != "foo" {
		t.Fatalf("expected Ident(foo), got %#v", n)
	}
}

func TestParseInit(t *testing.T) {
	n, ok := parseOne(t, "let x = 1;").(*ast.Init)
	if !ok {
		t.Fatalf("expected *ast.Init")
	}
	if n.Ident.Name != "x" {
		t.Errorf("expected ident x, got %s", n.Ident.Name)
	}
	if num, ok := n.Expr.(*ast.Number); !ok || num.Value != 1 {
		t.Errorf("expected init expr 1, got %#v", n.Expr)
	}
}

func TestParseGlobalInit(t *testing.T) {
	n, ok := parseOne(t, "global x = 1;").(*ast.GlobalInit)
	if !ok || n.Ident.Name != "x" {
		t.Fatalf("expected *ast.GlobalInit(x), got %#v", n)
	}
}

func TestParseAssign(t *testing.T) {
	n, ok := parseOne(t, "x = 2;").(*ast.Assign)
	if !ok || n.Ident.Name != "x" {
		t.Fatalf("expected *ast.Assign(x), got %#v", n)
	}
}

func TestParseAssignChaining(t *testing.T) {
	// `x = y = 1` parses as x = (y = 1) by recursing parseExpr on the rhs.
	n, ok := parseOne(t, "x = y = 1;").(*ast.Assign)
	if !ok || n.Ident.Name != "x" {
		t.Fatalf("expected outer assign to x, got %#v", n)
	}
	inner, ok := n.Expr.(*ast.Assign)
	if !ok || inner.Ident.Name != "y" {
		t.Fatalf("expected inner assign to y, got %#v", n.Expr)
	}
}

func TestParseBlock(t *testing.T) {
	n, ok := parseOne(t, "{ 1; 2; }").(*ast.Block)
	if !ok {
		t.Fatalf("expected *ast.Block")
	}
	if len(n.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(n.Children))
	}
}

func TestParseFuncDeclarationEmpty(t *testing.T) {
	n, ok := parseOne(t, "fn f() { 0; }").(*ast.Func)
	if !ok {
		t.Fatalf("expected *ast.Func")
	}
	if n.Ident.Name != "f" {
		t.Errorf("expected name f, got %s", n.Ident.Name)
	}
	if len(n.Args) != 0 {
		t.Errorf("expected 0 params, got %d", len(n.Args))
	}
}

func TestParseFuncDeclaration(t *testing.T) {
	n, ok := parseOne(t, "fn add(a, b) { return a + b; }").(*ast.Func)
	if !ok {
		t.Fatalf("expected *ast.Func")
	}
	if len(n.Args) != 2 || n.Args[0] != "a" || n.Args[1] != "b" {
		t.Fatalf("expected params [a b], got %v", n.Args)
	}
	if len(n.Body.Children) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(n.Body.Children))
	}
	if _, ok := n.Body.Children[0].(*ast.Return); !ok {
		t.Fatalf("expected a Return statement, got %#v", n.Body.Children[0])
	}
}

func TestParseCallEmpty(t *testing.T) {
	n, ok := parseOne(t, "f();").(*ast.Call)
	if !ok || n.Ident.Name != "f" {
		t.Fatalf("expected *ast.Call(f), got %#v", n)
	}
	if len(n.Args) != 0 {
		t.Errorf("expected 0 args, got %d", len(n.Args))
	}
}

func TestParseCall(t *testing.T) {
	n, ok := parseOne(t, "f(1, 2);").(*ast.Call)
	if !ok || n.Ident.Name != "f" {
		t.Fatalf("expected *ast.Call(f), got %#v", n)
	}
	if len(n.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(n.Args))
	}
}

func TestParseBoolFalse(t *testing.T) {
	n, ok := parseOne(t, "false;").(*ast.Bool)
	if !ok || n.Value != false {
		t.Fatalf("expected Bool(false), got %#v", n)
	}
}

func TestParseBoolTrue(t *testing.T) {
	n, ok := parseOne(t, "true;").(*ast.Bool)
	if !ok || n.Value != true {
		t.Fatalf("expected Bool(true), got %#v", n)
	}
}

func TestParseCondIf(t *testing.T) {
	n, ok := parseOne(t, "if true then { 1; }").(*ast.Cond)
	if !ok {
		t.Fatalf("expected *ast.Cond")
	}
	if n.Alter != nil {
		t.Errorf("expected nil Alter, got %#v", n.Alter)
	}
}

func TestParseCondIfElse(t *testing.T) {
	n, ok := parseOne(t, "if true then { 1; } else { 2; }").(*ast.Cond)
	if !ok {
		t.Fatalf("expected *ast.Cond")
	}
	if n.Alter == nil {
		t.Fatalf("expected non-nil Alter")
	}
}

func TestParseCondWhile(t *testing.T) {
	n, ok := parseOne(t, "while a < 10 { a = a + 1; }").(*ast.While)
	if !ok {
		t.Fatalf("expected *ast.While")
	}
	cond, ok := n.Cond.(*ast.Binary)
	if !ok || cond.Op != ast.Lt {
		t.Fatalf("expected Lt condition, got %#v", n.Cond)
	}
}

func TestParseExponentNumber(t *testing.T) {
	n, ok := parseOne(t, "1.5e2;").(*ast.Number)
	if !ok {
		t.Fatalf("expected *ast.Number")
	}
	if math.Abs(n.Value-150) > 1e-9 {
		t.Errorf("expected 150, got %v", n.Value)
	}
}

func TestParseMultipleTopLevelNodes(t *testing.T) {
	nodes, err := Parse("let a = 1; let b = 2;")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 top-level nodes, got %d", len(nodes))
	}
}

func TestParseErrorOnUnexpectedToken(t *testing.T) {
	if _, err := Parse("let = 1;"); err == nil {
		t.Fatalf("expected a parse error")
	}
}
