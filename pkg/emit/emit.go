// Package emit translates XS programs into Go source.
//
// Only programs consisting of a single expression built from literals,
// operators and conditionals can be emitted. Everything else makes Emit
// return an error wrapping ErrNotSupported.
//
// Integer division by zero panics in the emitted code instead of throwing.
package emit

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"sort"
	"strconv"
	"strings"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/logutil"
	"src.xs.sh/pkg/types"
)

var logger = logutil.GetLogger("[emit] ")

// ErrNotSupported is wrapped by errors about constructs that have no Go
// translation.
var ErrNotSupported = errors.New("not supported by the Go emitter")

// Options controls the names used in the emitted file.
type Options struct {
	// Name of the Go package. Defaults to "main", in which case a main
	// function printing the result is emitted as well.
	Package string
	// Name of the type holding the program. Defaults to "Program".
	Type string
	// Name of the method evaluating the program. Defaults to "Run".
	Func string
}

func (o *Options) fillDefaults() {
	if o.Package == "" {
		o.Package = "main"
	}
	if o.Type == "" {
		o.Type = "Program"
	}
	if o.Func == "" {
		o.Func = "Run"
	}
}

// Emit returns the formatted Go source for prog.
func Emit(prog *ast.Program, opts Options) ([]byte, error) {
	opts.fillDefaults()
	for _, name := range []string{opts.Package, opts.Type, opts.Func} {
		if !isGoIdentifier(name) {
			return nil, fmt.Errorf("invalid Go identifier %q", name)
		}
	}
	n, err := singleExpr(prog)
	if err != nil {
		return nil, err
	}
	e := &emitter{imports: map[string]bool{}}
	body, err := e.expr(n)
	if err != nil {
		return nil, err
	}
	ret := goType(n.Type())
	if opts.Package == "main" {
		e.imports["fmt"] = true
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by xs compile from %s. DO NOT EDIT.\n\n", prog.Name)
	fmt.Fprintf(&buf, "package %s\n\n", opts.Package)
	if len(e.imports) > 0 {
		imports := make([]string, 0, len(e.imports))
		for imp := range e.imports {
			imports = append(imports, strconv.Quote(imp))
		}
		sort.Strings(imports)
		fmt.Fprintf(&buf, "import (\n%s\n)\n\n", strings.Join(imports, "\n"))
	}
	fmt.Fprintf(&buf, "// %s is compiled from %s.\n", opts.Type, prog.Name)
	fmt.Fprintf(&buf, "type %s struct{}\n\n", opts.Type)
	fmt.Fprintf(&buf, "// %s evaluates the program.\n", opts.Func)
	fmt.Fprintf(&buf, "func (%s) %s() %s {\n", opts.Type, opts.Func, ret)
	for _, decl := range e.decls {
		buf.WriteString(decl + "\n")
	}
	fmt.Fprintf(&buf, "return %s\n}\n", body)
	if opts.Package == "main" {
		fmt.Fprintf(&buf, "\nfunc main() {\n\tfmt.Println(%s{}.%s())\n}\n", opts.Type, opts.Func)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		// A bug in the emitter rather than in the program.
		logger.Printf("emitted invalid Go: %v\n%s", err, buf.Bytes())
		return nil, fmt.Errorf("emitted invalid Go: %w", err)
	}
	return src, nil
}

// Returns the only statement of prog, which must be a non-void expression.
func singleExpr(prog *ast.Program) (ast.Node, error) {
	var body []ast.Node
	for _, n := range prog.Body.Body {
		if _, ok := n.(*ast.DebugPoint); !ok {
			body = append(body, n)
		}
	}
	if len(body) != 1 {
		return nil, fmt.Errorf("program with %d statements: %w", len(body), ErrNotSupported)
	}
	n := body[0]
	if t := n.Type(); t == nil || t.Kind == types.VoidKind {
		return nil, fmt.Errorf("statement without a value: %w", ErrNotSupported)
	}
	return n, nil
}

type emitter struct {
	// Declarations of the literals, one per line.
	decls   []string
	imports map[string]bool
}

func (e *emitter) expr(n ast.Node) (string, error) {
	switch n := n.(type) {
	case *ast.Literal:
		return e.literal(n)
	case *ast.Unary:
		return e.unary(n)
	case *ast.Binary:
		return e.binary(n)
	case *ast.Conditional:
		return e.conditional(n)
	}
	return "", fmt.Errorf("%s: %w", nodeName(n), ErrNotSupported)
}

// Literals are bound to variables, so that the operations on them happen at
// run time with the wrapping semantics of XS rather than being rejected as
// overflowing constants.
func (e *emitter) literal(n *ast.Literal) (string, error) {
	var text string
	switch v := n.Value.(type) {
	case bool:
		text = strconv.FormatBool(v)
	case int:
		text = "int32(" + strconv.Itoa(v) + ")"
	case int64:
		text = "int64(" + strconv.FormatInt(v, 10) + ")"
	case float32:
		text = "float32(" + formatFloat(float64(v), 32) + ")"
	case float64:
		text = "float64(" + formatFloat(v, 64) + ")"
	case rune:
		text = strconv.QuoteRune(v)
	case string:
		text = strconv.Quote(v)
	default:
		return "", fmt.Errorf("literal %v: %w", n.Value, ErrNotSupported)
	}
	if strings.Contains(text, "math.") {
		e.imports["math"] = true
	}
	name := "v" + strconv.Itoa(len(e.decls))
	e.decls = append(e.decls, name+" := "+text)
	return name, nil
}

func formatFloat(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'g', -1, bits)
	switch s {
	case "+Inf":
		return "math.Inf(1)"
	case "-Inf":
		return "math.Inf(-1)"
	case "NaN":
		return "math.NaN()"
	}
	return s
}

func (e *emitter) unary(n *ast.Unary) (string, error) {
	x, err := e.operand(n.X, n.Typ)
	if err != nil {
		return "", err
	}
	switch n.Op {
	case ast.Not:
		return "!" + x, nil
	case ast.Negate:
		return "-" + x, nil
	case ast.Complement:
		return "^" + x, nil
	}
	return "", fmt.Errorf("operator %s: %w", n.Op, ErrNotSupported)
}

func (e *emitter) binary(n *ast.Binary) (string, error) {
	xt, yt := n.X.Type(), n.Y.Type()
	switch {
	case n.Op == ast.Coalesce:
		return "", fmt.Errorf("operator %s: %w", n.Op, ErrNotSupported)
	case n.Op == ast.Add && n.Typ.Kind == types.StringKind:
		x, err := e.stringOperand(n.X)
		if err != nil {
			return "", err
		}
		y, err := e.stringOperand(n.Y)
		if err != nil {
			return "", err
		}
		return "(" + x + " + " + y + ")", nil
	case xt.Kind == types.BoolKind && yt.Kind == types.BoolKind:
		return e.logical(n)
	}

	operandType := types.Promote(xt, yt)
	if n.Op == ast.Shl || n.Op == ast.Shr {
		operandType = types.Promote(xt, xt)
	} else if operandType == nil {
		// Equality of strings.
		operandType = xt
	}
	x, err := e.operand(n.X, operandType)
	if err != nil {
		return "", err
	}
	switch n.Op {
	case ast.Shl, ast.Shr:
		y, err := e.operand(n.Y, types.Int)
		if err != nil {
			return "", err
		}
		mask := "31"
		if operandType.Kind == types.LongKind {
			mask = "63"
		}
		return fmt.Sprintf("(%s %s (uint(%s) & %s))", x, n.Op, y, mask), nil
	}
	y, err := e.operand(n.Y, operandType)
	if err != nil {
		return "", err
	}
	if n.Op == ast.Mod && (operandType.Kind == types.FloatKind || operandType.Kind == types.DoubleKind) {
		e.imports["math"] = true
		return fmt.Sprintf("%s(math.Mod(float64(%s), float64(%s)))", goType(operandType), x, y), nil
	}
	return "(" + x + " " + n.Op.String() + " " + y + ")", nil
}

// Boolean operators. Go has no non-short-circuiting & and | on booleans, so
// they are emitted as function literals evaluating both operands.
func (e *emitter) logical(n *ast.Binary) (string, error) {
	x, err := e.expr(n.X)
	if err != nil {
		return "", err
	}
	y, err := e.expr(n.Y)
	if err != nil {
		return "", err
	}
	switch n.Op {
	case ast.AndAlso, ast.OrElse, ast.Eq, ast.Ne:
		return "(" + x + " " + n.Op.String() + " " + y + ")", nil
	case ast.Xor:
		return "(" + x + " != " + y + ")", nil
	case ast.And:
		return "func() bool { x, y := " + x + ", " + y + "; return x && y }()", nil
	case ast.Or:
		return "func() bool { x, y := " + x + ", " + y + "; return x || y }()", nil
	}
	return "", fmt.Errorf("operator %s on bool: %w", n.Op, ErrNotSupported)
}

func (e *emitter) stringOperand(n ast.Node) (string, error) {
	s, err := e.expr(n)
	if err != nil {
		return "", err
	}
	switch n.Type().Kind {
	case types.StringKind:
		return s, nil
	case types.CharKind:
		return "string(" + s + ")", nil
	}
	return "", fmt.Errorf("concatenation with %s: %w", n.Type(), ErrNotSupported)
}

// Emits n converted to t if its type differs.
func (e *emitter) operand(n ast.Node, t *types.Type) (string, error) {
	s, err := e.expr(n)
	if err != nil {
		return "", err
	}
	if types.Identical(n.Type(), t) {
		return s, nil
	}
	return goType(t) + "(" + s + ")", nil
}

func (e *emitter) conditional(n *ast.Conditional) (string, error) {
	if n.Else == nil || n.Typ.Kind == types.VoidKind {
		return "", fmt.Errorf("conditional without a value: %w", ErrNotSupported)
	}
	test, err := e.expr(n.Test)
	if err != nil {
		return "", err
	}
	then, err := e.operand(blockValue(n.Then), n.Typ)
	if err != nil {
		return "", err
	}
	els, err := e.operand(blockValue(n.Else), n.Typ)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("func() %s {\nif %s {\nreturn %s\n}\nreturn %s\n}()",
		goType(n.Typ), test, then, els), nil
}

// Branches of conditionals are blocks. A block with a single expression
// stands for that expression; anything else is left for expr to reject.
func blockValue(n ast.Node) ast.Node {
	if b, ok := n.(*ast.Block); ok && len(b.Body) == 1 && len(b.Vars) == 0 {
		return b.Body[0]
	}
	return n
}

var goTypes = map[types.Kind]string{
	types.BoolKind:   "bool",
	types.IntKind:    "int32",
	types.LongKind:   "int64",
	types.FloatKind:  "float32",
	types.DoubleKind: "float64",
	types.CharKind:   "rune",
	types.StringKind: "string",
}

func goType(t *types.Type) string {
	if s, ok := goTypes[t.Kind]; ok {
		return s
	}
	return "any"
}

func nodeName(n ast.Node) string {
	name := fmt.Sprintf("%T", n)
	return strings.TrimPrefix(name, "*ast.")
}

func isGoIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isLetter := r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
		if !isLetter && (i == 0 || r < '0' || r > '9') {
			return false
		}
	}
	return true
}
