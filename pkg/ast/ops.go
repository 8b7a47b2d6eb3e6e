package ast

// UnaryOp is a unary operator.
type UnaryOp uint8

// Unary operators.
const (
	Not UnaryOp = iota
	Negate
	Complement
	PreIncrement
	PreDecrement
	PostIncrement
	PostDecrement
)

var unaryOpText = [...]string{
	Not:           "!",
	Negate:        "-",
	Complement:    "~",
	PreIncrement:  "++",
	PreDecrement:  "--",
	PostIncrement: "++",
	PostDecrement: "--",
}

func (op UnaryOp) String() string { return unaryOpText[op] }

// IsIncDec reports whether op modifies its operand.
func (op UnaryOp) IsIncDec() bool { return op >= PreIncrement }

// IsPostfix reports whether op is written after its operand.
func (op UnaryOp) IsPostfix() bool { return op == PostIncrement || op == PostDecrement }

// BinaryOp is a binary operator.
type BinaryOp uint8

// Binary operators.
const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	Shl
	Shr
	Lt
	Gt
	Le
	Ge
	Eq
	Ne
	And
	Xor
	Or
	AndAlso
	OrElse
	Coalesce
)

var binaryOpText = [...]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%",
	Shl: "<<", Shr: ">>",
	Lt: "<", Gt: ">", Le: "<=", Ge: ">=", Eq: "==", Ne: "!=",
	And: "&", Xor: "^", Or: "|",
	AndAlso: "&&", OrElse: "||", Coalesce: "??",
}

func (op BinaryOp) String() string { return binaryOpText[op] }

// Precedence returns the binding power of op; higher binds tighter.
func (op BinaryOp) Precedence() int {
	switch op {
	case Mul, Div, Mod:
		return 10
	case Add, Sub:
		return 9
	case Shl, Shr:
		return 8
	case Lt, Gt, Le, Ge:
		return 7
	case Eq, Ne:
		return 6
	case And:
		return 5
	case Xor:
		return 4
	case Or:
		return 3
	case AndAlso:
		return 2
	case OrElse:
		return 1
	default:
		return 0
	}
}

// IsComparison reports whether op produces a bool from two operands of the
// same type.
func (op BinaryOp) IsComparison() bool { return op >= Lt && op <= Ne }

// IsLogical reports whether op is a short-circuiting logical operator.
func (op BinaryOp) IsLogical() bool { return op == AndAlso || op == OrElse }

// AssignOp is an assignment operator. Compound operators are desugared by the
// parser into plain assignments of a Binary; AssignOp is kept for printing.
type AssignOp uint8

// Assignment operators.
const (
	PlainAssign AssignOp = iota
	AddAssign
	SubAssign
	MulAssign
	DivAssign
	ModAssign
)

var assignOpText = [...]string{
	PlainAssign: "=", AddAssign: "+=", SubAssign: "-=",
	MulAssign: "*=", DivAssign: "/=", ModAssign: "%=",
}

func (op AssignOp) String() string { return assignOpText[op] }

// Binary returns the binary operator a compound assignment applies.
func (op AssignOp) Binary() (BinaryOp, bool) {
	switch op {
	case AddAssign:
		return Add, true
	case SubAssign:
		return Sub, true
	case MulAssign:
		return Mul, true
	case DivAssign:
		return Div, true
	case ModAssign:
		return Mod, true
	}
	return 0, false
}
