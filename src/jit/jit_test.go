package jit

import (
	"math"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// scenarios covers representative end-to-end programs for each language
// construct, checked against their expected numeric result.
var scenarios = []struct {
	name   string
	source string
	want   float64
}{
	{"literal", `1`, 1.0},
	{"not_false", `!false`, 1.0},
	{"modulo", `10 % 3`, 1.0},
	{"let_and_use", `let a = 2+2; a`, 4.0},
	{"func_call", `fn test(a) {return 10+a;} test(5)`, 15.0},
	{"if_then_assigns", `let a=1; if (1 == 1) then {a = 3;} a`, 3.0},
	{"if_then_else", `let a=1; if (0 == 1) then {a = 3;} else {a=2;} a`, 2.0},
	{"recursive_call", `fn test(a) { let b=0; if a then {b=test(a-1);} else {b=a;} return b;} test(10)`, 0.0},
	{"while_loop", `let a=2; let b=0; while (a!=0) {a=a-1; b=b+1;} b`, 2.0},
	{"global_mutation", `global a=2; a=3; fn test() {return a;} test()`, 3.0},
	{"func_local_does_not_leak", `let a=5; fn test() {let a=10;} test(); a`, 5.0},
}

func TestEndToEndScenarios(t *testing.T) {
	for _, sc := range scenarios {
		sc := sc
		t.Run(sc.name, func(t *testing.T) {
			got, err := Run(sc.source)
			if err != nil {
				t.Fatalf("Run(%q) returned error: %v", sc.source, err)
			}
			if got != sc.want {
				t.Fatalf("Run(%q) = %v, want %v", sc.source, got, sc.want)
			}
		})
	}
}

func TestArityMismatchIsFatal(t *testing.T) {
	_, err := Run(`fn test(a) {} test()`)
	if err == nil {
		t.Fatal("expected an arity mismatch error, got nil")
	}
}

func TestUnresolvedIdentifierIsFatal(t *testing.T) {
	_, err := Run(`missing`)
	if err == nil {
		t.Fatal("expected an unresolved-identifier error, got nil")
	}
}

func TestIfWithoutElseYieldsNaN(t *testing.T) {
	got, err := Run(`if (0 == 1) then {1} a`)
	if err == nil {
		t.Fatalf("expected a parse/lowering error (unresolved a), got %v", got)
	}

	got, err = Run(`let r = if (0 == 1) then {1}; r`)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !math.IsNaN(got) {
		t.Fatalf("got %v, want NaN", got)
	}
}

func TestPow(t *testing.T) {
	got, err := Run(`2 ^ 10`)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got != 1024.0 {
		t.Fatalf("got %v, want 1024", got)
	}
}

func TestLogicalOperators(t *testing.T) {
	cases := []struct {
		source string
		want   float64
	}{
		{`1 && 1`, 1.0},
		{`1 && 0`, 0.0},
		{`0 || 1`, 1.0},
		{`0 || 0`, 0.0},
	}
	for _, c := range cases {
		got, err := Run(c.source)
		if err != nil {
			t.Fatalf("Run(%q) returned error: %v", c.source, err)
		}
		if got != c.want {
			t.Fatalf("Run(%q) = %v, want %v", c.source, got, c.want)
		}
	}
}

// TestIRSnapshot golden-tests the textual LLVM IR emitted for a small
// representative program, catching accidental changes to instruction
// shape or basic block layout that the numeric scenarios above wouldn't
// distinguish from an equally-correct but differently-structured lowering.
func TestIRSnapshot(t *testing.T) {
	ir, err := IRString(`fn add(a, b) {return a+b;} add(1, 2)`)
	if err != nil {
		t.Fatalf("IRString returned error: %v", err)
	}
	snaps.MatchSnapshot(t, ir)
}
