package expr

// Node is an expression tree node. The set of node types is closed: only the
// types in this file implement it, and the evaluator handles each of them.
type Node interface {
	node()
}

// BinaryOp is an arithmetic operator.
type BinaryOp string

const (
	OpAdd      BinaryOp = "+"
	OpSub      BinaryOp = "-"
	OpMul      BinaryOp = "*"
	OpDiv      BinaryOp = "/"
	OpFloorDiv BinaryOp = "//"
	OpMod      BinaryOp = "%"
	OpPow      BinaryOp = "**"
)

// CompareOp is a comparison operator.
type CompareOp string

const (
	OpLt CompareOp = "<"
	OpLe CompareOp = "<="
	OpGt CompareOp = ">"
	OpGe CompareOp = ">="
	OpEq CompareOp = "=="
	OpNe CompareOp = "!="
)

// LogicOp is a short-circuiting boolean operator.
type LogicOp string

const (
	OpAnd LogicOp = "and"
	OpOr  LogicOp = "or"
)

type (
	// NumberLit is a numeric literal.
	NumberLit struct{ Value float64 }

	// StringLit is a quoted string literal.
	StringLit struct{ Value string }

	// Name is an identifier reference.
	Name struct{ ID string }

	// Unary is a prefix sign: Op is "+" or "-".
	Unary struct {
		Op BinaryOp
		X  Node
	}

	// Binary is an arithmetic expression.
	Binary struct {
		Op          BinaryOp
		Left, Right Node
	}

	// Compare is a comparison chain: First Ops[0] Rest[0] Ops[1] Rest[1] ...
	Compare struct {
		First Node
		Ops   []CompareOp
		Rest  []Node
	}

	// Logic is a chain of operands joined by the same boolean operator.
	Logic struct {
		Op     LogicOp
		Values []Node
	}

	// Conditional is "Then if Cond else Else".
	Conditional struct {
		Cond, Then, Else Node
	}

	// Call is a function call.
	Call struct {
		Func Node
		Args []Node
	}
)

func (*NumberLit) node()   {}
func (*StringLit) node()   {}
func (*Name) node()        {}
func (*Unary) node()       {}
func (*Binary) node()      {}
func (*Compare) node()     {}
func (*Logic) node()       {}
func (*Conditional) node() {}
func (*Call) node()        {}
