// Package llvm implements the src/ir facade on top of the system-installed
// LLVM runtime via tinygo.org/x/go-llvm. This package only implements the
// abstract contract (module/function/block/builder operations); all
// AST-shaped decisions live in src/lower.
package llvm

import (
	"fmt"

	llvm "tinygo.org/x/go-llvm"

	"genko/src/ir"
)

// doubleType is the sole scalar type Genko programs operate on.
var doubleType = llvm.DoubleType()

// predicates maps the backend-neutral ir.Predicate to the concrete LLVM
// real-predicate constant.
var predicates = map[ir.Predicate]llvm.FloatPredicate{
	ir.OEQ: llvm.FloatOEQ,
	ir.ONE: llvm.FloatONE,
	ir.UEQ: llvm.FloatUEQ,
	ir.UNE: llvm.FloatUNE,
	ir.ULT: llvm.FloatULT,
	ir.ULE: llvm.FloatULE,
	ir.UGT: llvm.FloatUGT,
	ir.UGE: llvm.FloatUGE,
}

// Backend owns the LLVM context for the lifetime of one compilation. A
// Backend is not safe for concurrent use.
type Backend struct {
	ctx llvm.Context
}

// NewBackend creates a Backend with a fresh LLVM context.
func NewBackend() *Backend {
	return &Backend{ctx: llvm.NewContext()}
}

// Dispose releases the underlying LLVM context. Callers should defer this
// once the JIT harness is done with the module built from this Backend.
func (be *Backend) Dispose() {
	be.ctx.Dispose()
}

// NewModule implements ir.Backend.
func (be *Backend) NewModule(name string) ir.Module {
	return &module{
		ctx:     be.ctx,
		m:       be.ctx.NewModule(name),
		funcs:   make(map[string]*function, 8),
		globals: make(map[string]llvm.Value, 8),
	}
}

// NewBuilder implements ir.Backend.
func (be *Backend) NewBuilder() ir.Builder {
	return &builder{ctx: be.ctx, b: be.ctx.NewBuilder()}
}

// Raw exposes the underlying llvm.Module for callers (the CLI's --ir dump,
// the JIT harness) that must step outside the abstract facade. Returns
// false if m was not produced by this package.
func Raw(m ir.Module) (llvm.Module, bool) {
	impl, ok := m.(*module)
	if !ok {
		return llvm.Module{}, false
	}
	return impl.m, true
}

// RawFunction exposes the underlying llvm.Value for an ir.Function
// produced by this package, for callers (the JIT harness) that must pass
// it to the execution engine directly. Returns false if fn was not
// produced by this package.
func RawFunction(fn ir.Function) (llvm.Value, bool) {
	impl, ok := fn.(*function)
	if !ok {
		return llvm.Value{}, false
	}
	return impl.fn, true
}

// module wraps an llvm.Module plus the name tables the facade's
// Lookup*/Add* operations need.
type module struct {
	ctx     llvm.Context
	m       llvm.Module
	funcs   map[string]*function
	globals map[string]llvm.Value
}

func (mod *module) AddFunction(name string, arity int) ir.Function {
	params := make([]llvm.Type, arity)
	for i := range params {
		params[i] = doubleType
	}
	ftyp := llvm.FunctionType(doubleType, params, false)
	fn := llvm.AddFunction(mod.m, name, ftyp)
	f := &function{fn: fn, arity: arity}
	mod.funcs[name] = f
	return f
}

func (mod *module) AddGlobal(name string, init float64) ir.Slot {
	g := llvm.AddGlobal(mod.m, doubleType, name)
	g.SetInitializer(llvm.ConstFloat(doubleType, init))
	mod.globals[name] = g
	return g
}

func (mod *module) LookupFunction(name string) (ir.Function, bool) {
	f, ok := mod.funcs[name]
	return f, ok
}

func (mod *module) LookupGlobal(name string) (ir.Slot, bool) {
	g, ok := mod.globals[name]
	return g, ok
}

// function wraps an llvm.Value referring to a function definition.
type function struct {
	fn    llvm.Value
	arity int
}

func (f *function) AppendBlock(name string) ir.Block {
	return llvm.AddBasicBlock(f.fn, name)
}

func (f *function) FirstBlock() ir.Block {
	return f.fn.FirstBasicBlock()
}

func (f *function) Params() []ir.Value {
	params := f.fn.Params()
	out := make([]ir.Value, len(params))
	for i, p := range params {
		out[i] = p
	}
	return out
}

func (f *function) Arity() int {
	return f.arity
}

// builder wraps an llvm.Builder. cur tracks the block the builder was last
// explicitly positioned at, so AllocaInEntry can borrow the insertion point
// and hand it back without the lowering engine ever seeing the save/restore.
type builder struct {
	ctx llvm.Context
	b   llvm.Builder
	cur llvm.BasicBlock
}

func (bd *builder) PositionAtEnd(b ir.Block) {
	bb := b.(llvm.BasicBlock)
	bd.b.SetInsertPointAtEnd(bb)
	bd.cur = bb
}

func (bd *builder) AllocaInEntry(fn ir.Function, name string) ir.Slot {
	entry := fn.(*function).fn.FirstBasicBlock()
	if first := entry.FirstInstruction(); !first.IsNil() {
		bd.b.SetInsertPointBefore(first)
	} else {
		bd.b.SetInsertPointAtEnd(entry)
	}
	slot := bd.b.CreateAlloca(doubleType, name)
	if !bd.cur.IsNil() {
		bd.b.SetInsertPointAtEnd(bd.cur)
	}
	return slot
}

func (bd *builder) Load(s ir.Slot) ir.Value {
	return bd.b.CreateLoad(s.(llvm.Value), "")
}

func (bd *builder) Store(s ir.Slot, v ir.Value) {
	bd.b.CreateStore(v.(llvm.Value), s.(llvm.Value))
}

func (bd *builder) ConstFloat(v float64) ir.Value {
	return llvm.ConstFloat(doubleType, v)
}

func (bd *builder) FAdd(lhs, rhs ir.Value) ir.Value {
	return bd.b.CreateFAdd(lhs.(llvm.Value), rhs.(llvm.Value), "")
}

func (bd *builder) FSub(lhs, rhs ir.Value) ir.Value {
	return bd.b.CreateFSub(lhs.(llvm.Value), rhs.(llvm.Value), "")
}

func (bd *builder) FMul(lhs, rhs ir.Value) ir.Value {
	return bd.b.CreateFMul(lhs.(llvm.Value), rhs.(llvm.Value), "")
}

func (bd *builder) FDiv(lhs, rhs ir.Value) ir.Value {
	return bd.b.CreateFDiv(lhs.(llvm.Value), rhs.(llvm.Value), "")
}

func (bd *builder) FCmp(pred ir.Predicate, lhs, rhs ir.Value) ir.Value {
	p, ok := predicates[pred]
	if !ok {
		panic(fmt.Sprintf("llvm: unknown predicate %d", pred))
	}
	return bd.b.CreateFCmp(p, lhs.(llvm.Value), rhs.(llvm.Value), "")
}

func (bd *builder) UIToFPBool(v ir.Value) ir.Value {
	return bd.b.CreateUIToFP(v.(llvm.Value), doubleType, "")
}

func (bd *builder) FPToSITrunc(v ir.Value) ir.Value {
	i64 := llvm.Int64Type()
	trunc := bd.b.CreateFPToSI(v.(llvm.Value), i64, "")
	return bd.b.CreateSIToFP(trunc, doubleType, "")
}

func (bd *builder) BoolAnd(lhs, rhs ir.Value) ir.Value {
	return bd.b.CreateAnd(lhs.(llvm.Value), rhs.(llvm.Value), "")
}

func (bd *builder) BoolOr(lhs, rhs ir.Value) ir.Value {
	return bd.b.CreateOr(lhs.(llvm.Value), rhs.(llvm.Value), "")
}

func (bd *builder) CurrentBlock() ir.Block {
	return bd.cur
}

func (bd *builder) Terminated() bool {
	if bd.cur.IsNil() {
		return false
	}
	last := bd.cur.LastInstruction()
	if last.IsNil() {
		return false
	}
	return !last.IsATerminatorInst().IsNil()
}

func (bd *builder) CondBr(cond ir.Value, thenB, elseB ir.Block) {
	bd.b.CreateCondBr(cond.(llvm.Value), thenB.(llvm.BasicBlock), elseB.(llvm.BasicBlock))
}

func (bd *builder) Br(dest ir.Block) {
	bd.b.CreateBr(dest.(llvm.BasicBlock))
}

func (bd *builder) Ret(v ir.Value) {
	bd.b.CreateRet(v.(llvm.Value))
}

func (bd *builder) Call(fn ir.Function, args []ir.Value) ir.Value {
	f := fn.(*function)
	llvmArgs := make([]llvm.Value, len(args))
	for i, a := range args {
		llvmArgs[i] = a.(llvm.Value)
	}
	return bd.b.CreateCall(f.fn, llvmArgs, "")
}

func (bd *builder) Phi(incoming []ir.Incoming) ir.Value {
	phi := bd.b.CreatePHI(doubleType, "")
	vals := make([]llvm.Value, len(incoming))
	blocks := make([]llvm.BasicBlock, len(incoming))
	for i, in := range incoming {
		vals[i] = in.Value.(llvm.Value)
		blocks[i] = in.Block.(llvm.BasicBlock)
	}
	phi.AddIncoming(vals, blocks)
	return phi
}
