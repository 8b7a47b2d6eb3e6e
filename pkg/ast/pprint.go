package ast

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"src.xs.sh/pkg/types"
)

const (
	maxL      = 10
	maxR      = 10
	indentInc = 2
)

// PPrint pretty-prints the tree rooted at n, one node per line, children
// indented under their parents.
func PPrint(n Node, w io.Writer) {
	pprintRec(reflect.ValueOf(n), w, 0, "")
}

var (
	nodeType  = reflect.TypeOf((*Node)(nil)).Elem()
	spanType  = reflect.TypeOf(Span{})
	typeType  = reflect.TypeOf((*types.Type)(nil))
	varType   = reflect.TypeOf((*Variable)(nil))
	varsType  = reflect.TypeOf([]*Variable(nil))
	labelType = reflect.TypeOf((*Label)(nil))
)

type child struct {
	value   reflect.Value
	leading string
}

func pprintRec(v reflect.Value, w io.Writer, indent int, leading string) {
	sv := v.Elem()
	st := sv.Type()

	var props []string
	var children []child

	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if f.Anonymous {
			continue
		}
		fv := sv.Field(i)
		switch {
		case f.Type.Implements(nodeType):
			if fv.IsNil() {
				break
			}
			if fv.Kind() == reflect.Interface {
				fv = fv.Elem()
			}
			children = append(children, child{fv, f.Name + ": "})
		case f.Type.Kind() == reflect.Slice && f.Type.Elem().Implements(nodeType):
			for j := 0; j < fv.Len(); j++ {
				children = append(children, child{fv.Index(j).Elem(), ""})
			}
		case f.Type.Kind() == reflect.Slice && f.Type.Elem().Kind() == reflect.Ptr &&
			f.Type.Elem().Elem().Kind() == reflect.Struct && isClause(f.Type.Elem()):
			for j := 0; j < fv.Len(); j++ {
				children = append(children, child{fv.Index(j), ""})
			}
		default:
			if p, ok := property(f.Name, fv); ok {
				props = append(props, p)
			}
		}
	}

	fmt.Fprintf(w, "%*s%s%s", indent, "", leading, st.Name())
	if r, ok := v.Interface().(Node); ok {
		if span := r.Pos(); span.Line > 0 {
			fmt.Fprintf(w, " %d:%d", span.Line, span.Column)
		}
	}
	for _, p := range props {
		fmt.Fprint(w, " ", p)
	}
	fmt.Fprint(w, "\n")
	for _, ch := range children {
		pprintRec(ch.value, w, indent+indentInc, ch.leading)
	}
}

func isClause(t reflect.Type) bool {
	return t == caseType || t == catchType
}

func property(name string, v reflect.Value) (string, bool) {
	switch v.Type() {
	case spanType:
		return "", false
	case typeType, varType, labelType:
		if v.IsNil() {
			return "", false
		}
		return fmt.Sprintf("%s=%v", name, v.Interface()), true
	case varsType:
		if v.Len() == 0 {
			return "", false
		}
		names := make([]string, v.Len())
		for i := range names {
			names[i] = v.Index(i).Interface().(*Variable).Name
		}
		return name + "=[" + strings.Join(names, " ") + "]", true
	}
	if name == "Value" {
		return name + "=" + LiteralText(v.Interface()), true
	}
	switch val := v.Interface().(type) {
	case *types.Method:
		if val == nil {
			return "", false
		}
		return name + "=" + val.Name, true
	case *types.Member:
		if val == nil {
			return "", false
		}
		return name + "=" + val.Name, true
	case string:
		if val == "" {
			return "", false
		}
		return name + "=" + compactQuote(val), true
	case bool:
		if !val {
			return "", false
		}
		return name, true
	case int:
		return fmt.Sprintf("%s=%d", name, val), true
	case fmt.Stringer:
		return name + "=" + val.String(), true
	}
	return fmt.Sprintf("%s=%v", name, v.Interface()), true
}

func compactQuote(text string) string {
	if len(text) > maxL+maxR+3 {
		text = text[0:maxL] + "..." + text[len(text)-maxR:]
	}
	return strconv.Quote(text)
}
