package vals

import (
	"math"
	"testing"

	. "src.xs.sh/pkg/tt"
)

type reprer struct{}

func (reprer) Repr() string { return "<reprer>" }
func (reprer) Kind() string { return "thing" }

func TestKind(t *testing.T) {
	Test(t, Kind,
		Args(nil).Rets("null"),
		Args(1).Rets("int"),
		Args(int64(1)).Rets("long"),
		Args(float32(1)).Rets("float"),
		Args(1.0).Rets("double"),
		Args('a').Rets("char"),
		Args("a").Rets("string"),
		Args([]any{}).Rets("array"),
		Args(reprer{}).Rets("thing"),
		Args(struct{}{}).Rets("!!struct {}"),
	)
}

func TestToString(t *testing.T) {
	Test(t, ToString,
		Args(nil).Rets(""),
		Args(true).Rets("True"),
		Args(-12).Rets("-12"),
		Args(int64(1)<<40).Rets("1099511627776"),
		Args(float32(1.5)).Rets("1.5"),
		Args(2.0).Rets("2"),
		Args(1234567.0).Rets("1234567"),
		Args(1e20).Rets("1E+20"),
		Args(0.000001).Rets("1E-06"),
		Args(math.Inf(-1)).Rets("-Infinity"),
		Args('x').Rets("x"),
		Args([]any{1, "a", nil}).Rets("[1, a, ]"),
		Args(reprer{}).Rets("<reprer>"),
	)
}

func TestRepr(t *testing.T) {
	Test(t, Repr,
		Args(nil).Rets("null"),
		Args(false).Rets("false"),
		Args(int64(3)).Rets("3L"),
		Args(1.5).Rets("1.5D"),
		Args("a\"b").Rets(`"a\"b"`),
		Args([]any{1, "x"}).Rets(`[1, "x"]`),
		Args(reprer{}).Rets("<reprer>"),
		Args(struct{}{}).Rets("<!!struct {}>"),
	)
}

func TestEqual(t *testing.T) {
	arr := []any{1, 2}
	Test(t, Equal,
		Args(nil, nil).Rets(true),
		Args(nil, 0).Rets(false),
		Args(1, 1).Rets(true),
		Args(1, int64(1)).Rets(false),
		Args("a", "a").Rets(true),
		Args(arr, arr).Rets(true),
		Args(arr, []any{1, 2}).Rets(false),
		Args([]any{1}, 1).Rets(false),
		Args(1, []any{1}).Rets(false),
	)
}
