package host

import (
	"io"
	"math"
	"strconv"
	"strings"

	"src.xs.sh/pkg/eval/vals"
	"src.xs.sh/pkg/types"
)

// Methods available on values of every type.
var objectMethods = map[string][]*types.Method{}

func init() {
	addTo(objectMethods, false, "ToString", nil, types.String, func(recv any, _ []any) (any, error) {
		return vals.ToString(recv), nil
	})
	addTo(objectMethods, false, "Equals", params(types.Object), types.Bool, func(recv any, args []any) (any, error) {
		return vals.Equal(recv, args[0]), nil
	})
}

func mathType() *types.Type {
	t := types.NewHost("System.Math")
	addConstant(t, "PI", types.Double, math.Pi)
	addConstant(t, "E", types.Double, math.E)

	addStatic(t, "Max", params(types.Int, types.Int), types.Int, func(_ any, a []any) (any, error) {
		return max(a[0].(int), a[1].(int)), nil
	})
	addStatic(t, "Max", params(types.Long, types.Long), types.Long, func(_ any, a []any) (any, error) {
		return max(a[0].(int64), a[1].(int64)), nil
	})
	addStatic(t, "Max", params(types.Double, types.Double), types.Double, func(_ any, a []any) (any, error) {
		return math.Max(a[0].(float64), a[1].(float64)), nil
	})
	addStatic(t, "Min", params(types.Int, types.Int), types.Int, func(_ any, a []any) (any, error) {
		return min(a[0].(int), a[1].(int)), nil
	})
	addStatic(t, "Min", params(types.Long, types.Long), types.Long, func(_ any, a []any) (any, error) {
		return min(a[0].(int64), a[1].(int64)), nil
	})
	addStatic(t, "Min", params(types.Double, types.Double), types.Double, func(_ any, a []any) (any, error) {
		return math.Min(a[0].(float64), a[1].(float64)), nil
	})
	addStatic(t, "Abs", params(types.Int), types.Int, func(_ any, a []any) (any, error) {
		v := a[0].(int)
		if v == math.MinInt32 {
			return nil, NewException(OverflowType, "Negating the minimum value of a twos complement number is invalid.")
		}
		if v < 0 {
			v = -v
		}
		return v, nil
	})
	addStatic(t, "Abs", params(types.Long), types.Long, func(_ any, a []any) (any, error) {
		v := a[0].(int64)
		if v == math.MinInt64 {
			return nil, NewException(OverflowType, "Negating the minimum value of a twos complement number is invalid.")
		}
		if v < 0 {
			v = -v
		}
		return v, nil
	})
	addStatic(t, "Abs", params(types.Double), types.Double, func(_ any, a []any) (any, error) {
		return math.Abs(a[0].(float64)), nil
	})
	unary := map[string]func(float64) float64{
		"Sqrt": math.Sqrt, "Floor": math.Floor, "Ceiling": math.Ceil,
		"Round": math.RoundToEven, "Log": math.Log, "Exp": math.Exp,
		"Sin": math.Sin, "Cos": math.Cos, "Tan": math.Tan,
	}
	for name, f := range unary {
		f := f
		addStatic(t, name, params(types.Double), types.Double, func(_ any, a []any) (any, error) {
			return f(a[0].(float64)), nil
		})
	}
	addStatic(t, "Pow", params(types.Double, types.Double), types.Double, func(_ any, a []any) (any, error) {
		return math.Pow(a[0].(float64), a[1].(float64)), nil
	})
	return t
}

func consoleType(r *Registry) *types.Type {
	t := types.NewHost("System.Console")
	write := func(text string) (any, error) {
		_, err := io.WriteString(r.out, text)
		return nil, err
	}
	addStatic(t, "WriteLine", nil, types.Void, func(_ any, _ []any) (any, error) {
		return write("\n")
	})
	addStatic(t, "WriteLine", params(types.Object), types.Void, func(_ any, a []any) (any, error) {
		return write(vals.ToString(a[0]) + "\n")
	})
	addStatic(t, "Write", params(types.Object), types.Void, func(_ any, a []any) (any, error) {
		return write(vals.ToString(a[0]))
	})
	addStatic(t, "ReadLine", nil, types.String, func(_ any, _ []any) (any, error) {
		line, err := r.in.ReadString('\n')
		if err == io.EOF && line == "" {
			return nil, nil
		} else if err != nil && err != io.EOF {
			return nil, err
		}
		return strings.TrimRight(line, "\r\n"), nil
	})
	return t
}

func convertType() *types.Type {
	t := types.NewHost("System.Convert")
	addStatic(t, "ToInt32", params(types.Int), types.Int, func(_ any, a []any) (any, error) {
		return a[0], nil
	})
	addStatic(t, "ToInt32", params(types.Long), types.Int, func(_ any, a []any) (any, error) {
		v := a[0].(int64)
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, NewException(OverflowType, "Value was either too large or too small for an Int32.")
		}
		return int(v), nil
	})
	addStatic(t, "ToInt32", params(types.Double), types.Int, func(_ any, a []any) (any, error) {
		v := math.RoundToEven(a[0].(float64))
		if math.IsNaN(v) || v < math.MinInt32 || v > math.MaxInt32 {
			return nil, NewException(OverflowType, "Value was either too large or too small for an Int32.")
		}
		return int(v), nil
	})
	addStatic(t, "ToInt32", params(types.String), types.Int, func(_ any, a []any) (any, error) {
		s, _ := a[0].(string)
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return nil, formatError(s, err)
		}
		return int(v), nil
	})
	addStatic(t, "ToInt64", params(types.Long), types.Long, func(_ any, a []any) (any, error) {
		return a[0], nil
	})
	addStatic(t, "ToInt64", params(types.Double), types.Long, func(_ any, a []any) (any, error) {
		v := math.RoundToEven(a[0].(float64))
		if math.IsNaN(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return nil, NewException(OverflowType, "Value was either too large or too small for an Int64.")
		}
		return int64(v), nil
	})
	addStatic(t, "ToInt64", params(types.String), types.Long, func(_ any, a []any) (any, error) {
		s, _ := a[0].(string)
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, formatError(s, err)
		}
		return v, nil
	})
	addStatic(t, "ToDouble", params(types.Double), types.Double, func(_ any, a []any) (any, error) {
		return a[0], nil
	})
	addStatic(t, "ToDouble", params(types.String), types.Double, func(_ any, a []any) (any, error) {
		s, _ := a[0].(string)
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, formatError(s, err)
		}
		return v, nil
	})
	addStatic(t, "ToBoolean", params(types.String), types.Bool, func(_ any, a []any) (any, error) {
		s, _ := a[0].(string)
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, NewException(FormatType, "String '%s' was not recognized as a valid Boolean.", s)
	})
	addStatic(t, "ToChar", params(types.Int), types.Char, func(_ any, a []any) (any, error) {
		v := a[0].(int)
		if v < 0 || v > 0xFFFF {
			return nil, NewException(OverflowType, "Value was either too large or too small for a character.")
		}
		return rune(v), nil
	})
	addStatic(t, "ToString", params(types.Object), types.String, func(_ any, a []any) (any, error) {
		return vals.ToString(a[0]), nil
	})
	return t
}

func formatError(s string, err error) error {
	if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
		return NewException(OverflowType, "Value was either too large or too small: %s", s)
	}
	return NewException(FormatType, "Input string '%s' was not in a correct format.", s)
}

var (
	stringMethods = map[string][]*types.Method{}
	stringLength  = &types.Member{Name: "Length", Type: types.Int,
		Get: func(recv any) (any, error) { return len([]rune(recv.(string))), nil }}
	arrayLength = &types.Member{Name: "Length", Type: types.Int,
		Get: func(recv any) (any, error) { return len(recv.([]any)), nil }}
)

func init() {
	str := func(recv any) []rune { return []rune(recv.(string)) }
	strArg := func(a []any, i int) (string, error) {
		s, ok := a[i].(string)
		if !ok {
			return "", NewException(ArgumentType, "Value cannot be null.")
		}
		return s, nil
	}
	method := func(name string, ps []*types.Type, ret *types.Type, f fn) {
		addTo(stringMethods, false, name, ps, ret, f)
	}

	method("ToUpper", nil, types.String, func(recv any, _ []any) (any, error) {
		return strings.ToUpper(recv.(string)), nil
	})
	method("ToLower", nil, types.String, func(recv any, _ []any) (any, error) {
		return strings.ToLower(recv.(string)), nil
	})
	method("Trim", nil, types.String, func(recv any, _ []any) (any, error) {
		return strings.TrimSpace(recv.(string)), nil
	})
	method("Substring", params(types.Int), types.String, func(recv any, a []any) (any, error) {
		rs := str(recv)
		return substring(rs, a[0].(int), len(rs)-a[0].(int))
	})
	method("Substring", params(types.Int, types.Int), types.String, func(recv any, a []any) (any, error) {
		return substring(str(recv), a[0].(int), a[1].(int))
	})
	for name, f := range map[string]func(string, string) bool{
		"Contains": strings.Contains, "StartsWith": strings.HasPrefix, "EndsWith": strings.HasSuffix,
	} {
		f := f
		method(name, params(types.String), types.Bool, func(recv any, a []any) (any, error) {
			s, err := strArg(a, 0)
			if err != nil {
				return nil, err
			}
			return f(recv.(string), s), nil
		})
	}
	method("IndexOf", params(types.Char), types.Int, func(recv any, a []any) (any, error) {
		for i, r := range str(recv) {
			if r == a[0].(rune) {
				return i, nil
			}
		}
		return -1, nil
	})
	method("IndexOf", params(types.String), types.Int, func(recv any, a []any) (any, error) {
		s, err := strArg(a, 0)
		if err != nil {
			return nil, err
		}
		i := strings.Index(recv.(string), s)
		if i < 0 {
			return -1, nil
		}
		return len([]rune(recv.(string)[:i])), nil
	})
	method("Replace", params(types.String, types.String), types.String, func(recv any, a []any) (any, error) {
		old, err := strArg(a, 0)
		if err != nil {
			return nil, err
		}
		if old == "" {
			return nil, NewException(ArgumentType, "String cannot be of zero length.")
		}
		repl, _ := a[1].(string)
		return strings.ReplaceAll(recv.(string), old, repl), nil
	})
	method("Split", params(types.Char), types.ArrayOf(types.String), func(recv any, a []any) (any, error) {
		parts := strings.Split(recv.(string), string(a[0].(rune)))
		arr := make([]any, len(parts))
		for i, p := range parts {
			arr[i] = p
		}
		return arr, nil
	})

	addTo(stringMethods, true, "IsNullOrEmpty", params(types.String), types.Bool, func(_ any, a []any) (any, error) {
		s, _ := a[0].(string)
		return s == "", nil
	})
	addTo(stringMethods, true, "Join", params(types.String, types.ArrayOf(types.String)), types.String, func(_ any, a []any) (any, error) {
		sep, _ := a[0].(string)
		arr, ok := a[1].([]any)
		if !ok {
			return nil, NewException(ArgumentType, "Value cannot be null.")
		}
		parts := make([]string, len(arr))
		for i, e := range arr {
			parts[i] = vals.ToString(e)
		}
		return strings.Join(parts, sep), nil
	})
	addTo(stringMethods, true, "Concat", params(types.Object, types.Object), types.String, func(_ any, a []any) (any, error) {
		return vals.ToString(a[0]) + vals.ToString(a[1]), nil
	})
}

func substring(rs []rune, start, n int) (any, error) {
	if start < 0 || n < 0 || start+n > len(rs) {
		return nil, NewException(ArgumentType,
			"Index and length must refer to a location within the string: %d, %d", start, n)
	}
	return string(rs[start : start+n]), nil
}
