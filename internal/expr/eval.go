package expr

import (
	"math"

	"github.com/stevehiehn/calcengine/internal/mathx"
)

// Bindings resolves identifiers during evaluation. Implementations must not be
// modified while an evaluation is in progress.
type Bindings interface {
	Lookup(name string) (Value, bool)
}

// Map adapts a plain map to Bindings.
type Map map[string]Value

// Lookup implements Bindings.
func (m Map) Lookup(name string) (Value, bool) {
	v, ok := m[name]
	return v, ok
}

// Program is a parsed expression ready for repeated evaluation.
type Program struct {
	src  string
	root Node
}

// Compile parses src into a Program.
func Compile(src string) (*Program, error) {
	root, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return &Program{src: src, root: root}, nil
}

// Source returns the expression text the program was compiled from.
func (p *Program) Source() string { return p.src }

// Eval evaluates the program against b. A nil b binds nothing.
func (p *Program) Eval(b Bindings) (Value, error) {
	if b == nil {
		b = Map(nil)
	}
	ev := &evaluator{src: p.src, bindings: b}
	return ev.eval(p.root)
}

// Evaluate parses and evaluates src against b.
func Evaluate(src string, b Bindings) (Value, error) {
	p, err := Compile(src)
	if err != nil {
		return Value{}, err
	}
	return p.Eval(b)
}

type evaluator struct {
	src      string
	bindings Bindings
}

func (e *evaluator) fail(format string, args ...any) error {
	return newError(e.src, format, args...)
}

func (e *evaluator) eval(n Node) (Value, error) {
	switch n := n.(type) {
	case *NumberLit:
		return Number(n.Value), nil
	case *StringLit:
		return String(n.Value), nil
	case *Name:
		return e.name(n)
	case *Unary:
		return e.unary(n)
	case *Binary:
		return e.binary(n)
	case *Compare:
		return e.compare(n)
	case *Logic:
		return e.logic(n)
	case *Conditional:
		cond, err := e.eval(n.Cond)
		if err != nil {
			return Value{}, err
		}
		if cond.Truthy() {
			return e.eval(n.Then)
		}
		return e.eval(n.Else)
	case *Call:
		return e.call(n)
	default:
		return Value{}, e.fail("unsupported expression type %T", n)
	}
}

func (e *evaluator) name(n *Name) (Value, error) {
	if v, ok := e.bindings.Lookup(n.ID); ok {
		return v, nil
	}
	if IsBuiltin(n.ID) {
		return Value{}, e.fail("function '%s' cannot be used as a value", n.ID)
	}
	switch n.ID {
	case "true", "True":
		return Bool(true), nil
	case "false", "False":
		return Bool(false), nil
	}
	return Value{}, e.fail("unknown identifier: %s", n.ID)
}

func (e *evaluator) numeric(v Value, op string) (float64, error) {
	f, ok := v.Num()
	if !ok {
		return 0, e.fail("unsupported operand type for %s: %s", op, v.Kind())
	}
	return f, nil
}

func (e *evaluator) finite(f float64) (Value, error) {
	if !mathx.Finite(f) {
		return Value{}, e.fail("numeric result out of range")
	}
	return Number(f), nil
}

func (e *evaluator) unary(n *Unary) (Value, error) {
	x, err := e.eval(n.X)
	if err != nil {
		return Value{}, err
	}
	f, err := e.numeric(x, "unary "+string(n.Op))
	if err != nil {
		return Value{}, err
	}
	switch n.Op {
	case OpSub:
		return Number(-f), nil
	case OpAdd:
		return Number(f), nil
	default:
		return Value{}, e.fail("unsupported unary operator: %s", n.Op)
	}
}

func (e *evaluator) binary(n *Binary) (Value, error) {
	left, err := e.eval(n.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := e.eval(n.Right)
	if err != nil {
		return Value{}, err
	}

	if n.Op == OpAdd && left.Kind() == KindString && right.Kind() == KindString {
		return String(left.str + right.str), nil
	}
	l, lok := left.Num()
	r, rok := right.Num()
	if !lok || !rok {
		return Value{}, e.fail("unsupported operand types for %s: %s and %s", n.Op, left.Kind(), right.Kind())
	}

	switch n.Op {
	case OpAdd:
		return e.finite(l + r)
	case OpSub:
		return e.finite(l - r)
	case OpMul:
		return e.finite(l * r)
	case OpDiv:
		if r == 0 {
			return Value{}, e.fail("division by zero")
		}
		return e.finite(l / r)
	case OpFloorDiv:
		if r == 0 {
			return Value{}, e.fail("integer division or modulo by zero")
		}
		return e.finite(mathx.FloorDiv(l, r))
	case OpMod:
		if r == 0 {
			return Value{}, e.fail("integer division or modulo by zero")
		}
		return e.finite(mathx.FloorMod(l, r))
	case OpPow:
		f, err := power(l, r)
		if err != nil {
			return Value{}, e.fail("%v", err)
		}
		return e.finite(f)
	default:
		return Value{}, e.fail("unsupported operator: %s", n.Op)
	}
}

func (e *evaluator) compare(n *Compare) (Value, error) {
	left, err := e.eval(n.First)
	if err != nil {
		return Value{}, err
	}
	for i, op := range n.Ops {
		right, err := e.eval(n.Rest[i])
		if err != nil {
			return Value{}, err
		}
		ok, err := e.compareValues(op, left, right)
		if err != nil {
			return Value{}, err
		}
		if !ok {
			return Bool(false), nil
		}
		left = right
	}
	return Bool(true), nil
}

func (e *evaluator) compareValues(op CompareOp, left, right Value) (bool, error) {
	if op == OpEq || op == OpNe {
		eq := equal(left, right)
		if op == OpEq {
			return eq, nil
		}
		return !eq, nil
	}

	var c int
	ls, lstr := left.Str()
	rs, rstr := right.Str()
	switch {
	case lstr && rstr:
		c = compareStrings(ls, rs)
	case !lstr && !rstr:
		l, _ := left.Num()
		r, _ := right.Num()
		switch {
		case l < r:
			c = -1
		case l > r:
			c = 1
		}
	default:
		return false, e.fail("'%s' not supported between %s and %s", op, left.Kind(), right.Kind())
	}

	switch op {
	case OpLt:
		return c < 0, nil
	case OpLe:
		return c <= 0, nil
	case OpGt:
		return c > 0, nil
	case OpGe:
		return c >= 0, nil
	default:
		return false, e.fail("unsupported comparison: %s", op)
	}
}

func equal(a, b Value) bool {
	as, astr := a.Str()
	bs, bstr := b.Str()
	if astr || bstr {
		return astr && bstr && as == bs
	}
	af, _ := a.Num()
	bf, _ := b.Num()
	return af == bf
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (e *evaluator) logic(n *Logic) (Value, error) {
	for _, operand := range n.Values {
		v, err := e.eval(operand)
		if err != nil {
			return Value{}, err
		}
		switch n.Op {
		case OpAnd:
			if !v.Truthy() {
				return Bool(false), nil
			}
		case OpOr:
			if v.Truthy() {
				return Bool(true), nil
			}
		default:
			return Value{}, e.fail("unsupported boolean operator: %s", n.Op)
		}
	}
	return Bool(n.Op == OpAnd), nil
}

func (e *evaluator) call(n *Call) (Value, error) {
	fn, name, err := e.callee(n.Func)
	if err != nil {
		return Value{}, err
	}
	if err := fn.checkArity(name, len(n.Args)); err != nil {
		return Value{}, e.fail("%v", err)
	}
	args := make([]float64, len(n.Args))
	for i, a := range n.Args {
		v, err := e.eval(a)
		if err != nil {
			return Value{}, err
		}
		f, ok := v.Num()
		if !ok {
			return Value{}, e.fail("%s() argument %d must be a number, not %s", name, i+1, v.Kind())
		}
		args[i] = f
	}
	out, err := fn.fn(args)
	if err != nil {
		return Value{}, e.fail("%s(): %v", name, err)
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return Value{}, e.fail("%s(): numeric result out of range", name)
	}
	return Number(out), nil
}

// callee resolves the function being called. Bound identifiers shadow builtins
// and are never callable.
func (e *evaluator) callee(n Node) (builtin, string, error) {
	if name, ok := n.(*Name); ok {
		if v, bound := e.bindings.Lookup(name.ID); bound {
			return builtin{}, "", e.fail("not a callable: %s (%s)", name.ID, v)
		}
		if fn, ok := builtins[name.ID]; ok {
			return fn, name.ID, nil
		}
	}
	v, err := e.eval(n)
	if err != nil {
		return builtin{}, "", err
	}
	return builtin{}, "", e.fail("not a callable: %s", v)
}

// Identifiers returns the distinct names referenced by src in first-use order,
// excluding names used only as call targets of builtins.
func Identifiers(src string) ([]string, error) {
	root, err := Parse(src)
	if err != nil {
		return nil, err
	}
	var (
		names []string
		seen  = map[string]bool{}
	)
	var walk func(Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *Name:
			if !seen[n.ID] {
				seen[n.ID] = true
				names = append(names, n.ID)
			}
		case *Unary:
			walk(n.X)
		case *Binary:
			walk(n.Left)
			walk(n.Right)
		case *Compare:
			walk(n.First)
			for _, r := range n.Rest {
				walk(r)
			}
		case *Logic:
			for _, v := range n.Values {
				walk(v)
			}
		case *Conditional:
			walk(n.Then)
			walk(n.Cond)
			walk(n.Else)
		case *Call:
			if name, ok := n.Func.(*Name); !ok || !IsBuiltin(name.ID) {
				walk(n.Func)
			}
			for _, a := range n.Args {
				walk(a)
			}
		}
	}
	walk(root)
	return names, nil
}
