package parse

import (
	"fmt"

	"src.xs.sh/pkg/ast"
	"src.xs.sh/pkg/types"
)

// ExtensionType determines where in the grammar an extension is plugged in.
type ExtensionType uint8

// Possible values of ExtensionType.
const (
	// Literal extensions are tried along with the built-in literals.
	Literal ExtensionType = iota
	// Expression extensions are tried among the primary expressions, after
	// literals.
	Expression
	// Statement extensions are complex statements that delimit themselves,
	// like loops.
	Statement
	// Terminated extensions are simple statements that are followed by a
	// semicolon.
	Terminated
)

var extensionTypeNames = [...]string{
	Literal: "literal", Expression: "expression",
	Statement: "statement", Terminated: "terminated statement",
}

func (t ExtensionType) String() string { return extensionTypeNames[t] }

// Extension adds a keyword to the grammar. The parser returned by
// CreateParser is dispatched to after the keyword has been read; it parses
// what follows the keyword.
type Extension interface {
	Type() ExtensionType
	Key() string
	CreateParser(b *Binder) Parser[ast.Node]
}

// Binder exposes the parsers of the grammar to extensions.
type Binder struct {
	// Expr parses an expression, including complex statements used as
	// values.
	Expr Parser[ast.Node]
	// Statement parses a single statement, including its terminator.
	Statement Parser[ast.Node]
	// Block parses a braced block in a new scope frame.
	Block Parser[*ast.Block]
	// Type parses a type name.
	Type Parser[*types.Type]
}

// Tables of keywords, one per ExtensionType.
type keywordTables [Terminated + 1]*KeywordTable[ast.Node]

// Adds extensions to the tables, which already contain the built-in
// keywords. Extensions are added grouped by type, and in the order given
// within each type. A key that is reserved or already in any table is
// rejected. Added keys become reserved.
func addExtensions(tables *keywordTables, reserved map[string]bool, exts []Extension, b *Binder) error {
	for typ := Literal; typ <= Terminated; typ++ {
		for _, ext := range exts {
			if ext.Type() != typ {
				continue
			}
			key := ext.Key()
			for t, table := range tables {
				if table.Has(key) {
					return fmt.Errorf("extension %s conflicts with %s keyword %s",
						key, ExtensionType(t), key)
				}
			}
			if reserved[key] {
				return fmt.Errorf("extension %s conflicts with keyword %s", key, key)
			}
			if err := tables[typ].Add(key, Named(key, ext.CreateParser(b))); err != nil {
				return err
			}
			reserved[key] = true
		}
	}
	return nil
}
