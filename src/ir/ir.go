// Package ir defines the abstract IR-building contract the lowering engine
// requires from a backend. The lowering engine in src/lower never imports a
// concrete backend directly; it is written entirely against these
// interfaces so the LLVM implementation in src/ir/llvm can be swapped for
// another backend without touching the core.
package ir

// Predicate enumerates the float comparisons the lowering engine needs.
// Ordered predicates are used where NaN must force the "false" branch
// (e.g. a Cond's own test); unordered predicates are used for the
// user-visible comparison operators, which are NaN-propagating.
type Predicate int

const (
	OEQ Predicate = iota // ordered equal
	ONE                  // ordered not-equal
	UEQ                  // unordered equal
	UNE                  // unordered not-equal
	ULT                  // unordered less-than
	ULE                  // unordered less-or-equal
	UGT                  // unordered greater-than
	UGE                  // unordered greater-or-equal
)

// Value is an opaque handle to an SSA double (or an i1 produced by a
// comparison, prior to widening).
type Value interface{}

// Slot is an opaque handle to stack storage produced by an alloca or a
// module-level global.
type Slot interface{}

// Block is an opaque handle to a basic block.
type Block interface{}

// Incoming pairs a value with the predecessor block it arrives from, for
// constructing a phi node.
type Incoming struct {
	Value Value
	Block Block
}

// Function is a callable, double-returning definition with a fixed arity.
type Function interface {
	// AppendBlock creates and appends a new, empty basic block.
	AppendBlock(name string) Block
	// FirstBlock returns the function's entry block.
	FirstBlock() Block
	// Params returns the function's incoming parameter values, in
	// declaration order.
	Params() []Value
	// Arity returns the number of declared parameters.
	Arity() int
}

// Module owns every function and global defined while lowering one
// program.
type Module interface {
	// AddFunction declares a new function of the given arity, all
	// parameters and the return type being double.
	AddFunction(name string, arity int) Function
	// AddGlobal creates a module-level double global, initialised to
	// init.
	AddGlobal(name string, init float64) Slot
	// LookupFunction finds a previously declared function by name.
	LookupFunction(name string) (Function, bool)
	// LookupGlobal finds a previously declared global by name.
	LookupGlobal(name string) (Slot, bool)
}

// Builder emits instructions into whatever block it is currently
// positioned at. It is single-owner and mutated in place by the lowering
// engine: one context, one builder, one thread.
type Builder interface {
	// PositionAtEnd repositions the write head to the end of b.
	PositionAtEnd(b Block)
	// AllocaInEntry allocates a double-wide stack slot at the start of
	// fn's entry block, regardless of the builder's current position, so
	// the lowering engine never has to save and restore the insertion
	// point itself just to hoist a local's storage into the entry block.
	AllocaInEntry(fn Function, name string) Slot

	Load(s Slot) Value
	Store(s Slot, v Value)

	ConstFloat(v float64) Value

	FAdd(lhs, rhs Value) Value
	FSub(lhs, rhs Value) Value
	FMul(lhs, rhs Value) Value
	FDiv(lhs, rhs Value) Value
	FCmp(pred Predicate, lhs, rhs Value) Value

	// UIToFPBool widens an i1 comparison result to a 0.0/1.0 double.
	UIToFPBool(v Value) Value
	// FPToSITrunc truncates a double to a signed 64-bit integer, then
	// widens it back to double: the C-style truncating-remainder step
	// Modulo lowering needs (lhs - rhs*trunc(lhs/rhs)).
	FPToSITrunc(v Value) Value

	// BoolAnd and BoolOr combine two i1 comparison results, backing a
	// bitwise-compared lowering of And/Or.
	BoolAnd(lhs, rhs Value) Value
	BoolOr(lhs, rhs Value) Value

	CondBr(cond Value, thenB, elseB Block)
	Br(dest Block)
	Ret(v Value)
	Call(fn Function, args []Value) Value
	Phi(incoming []Incoming) Value

	// CurrentBlock returns the block the builder is presently positioned
	// at. The lowering engine uses this to capture the true predecessor
	// block for a phi incoming edge, since lowering a branch's body may
	// itself open and close further nested blocks.
	CurrentBlock() Block
	// Terminated reports whether the current block already ends in a
	// terminator instruction (a Ret or Br already emitted into it).
	Terminated() bool
}

// Backend constructs a fresh Module and the Builder used to populate it.
// The lowering engine asks for exactly one of each per program.
type Backend interface {
	NewModule(name string) Module
	NewBuilder() Builder
}
